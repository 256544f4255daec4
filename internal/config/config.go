package config

import "github.com/kalkin/glv/internal/subtrees"

// Config holds the viewer settings. It is built once in cmd and handed to
// the call sites that need it; there is no package level state.
type Config struct {
	// AuthorNameWidth is the author column width.
	AuthorNameWidth int

	// AuthorRelDateWidth is the relative date column width; 0 sizes the
	// column to the widest value seen.
	AuthorRelDateWidth int

	// ModulesWidth is the subtree modules column width.
	ModulesWidth int

	// MaxCommitsPerFill caps how many commits one lazy fill-up fetches.
	MaxCommitsPerFill int

	// Subtrees lists the configured subtree modules.
	Subtrees []subtrees.SubtreeConfig
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		AuthorNameWidth:    10,
		AuthorRelDateWidth: 0,
		ModulesWidth:       35,
		MaxCommitsPerFill:  100,
	}
}
