package models

import "strings"

// Oid is a commit object identifier. The empty string means "none".
type Oid string

// GitRef is a human readable ref name (branch, tag or HEAD alias).
type GitRef string

// Commit is one parsed history entry.
//
// Bellow is the first parent recorded by git; any further parents are
// Children. Above identifies the structural predecessor from the same build
// pass and is an Oid lookup into the owning slice, never a pointer. Level is
// the nesting depth produced by merge expansion. Folded belongs to the
// presentation layer; nothing else mutates a Commit after parsing.
type Commit struct {
	ID      Oid
	ShortID string

	AuthorName    string
	AuthorEmail   string
	AuthorDate    string
	AuthorRelDate string

	CommitterName    string
	CommitterEmail   string
	CommitterDate    string
	CommitterRelDate string

	Subject       string
	SubjectModule string
	ShortSubject  string
	Body          string

	Icon string

	Above    Oid
	Bellow   Oid
	Children []Oid
	Level    int

	IsCommitLink bool
	IsForkPoint  bool
	IsHead       bool

	Branches   []GitRef
	Tags       []GitRef
	References []GitRef

	SubtreeModules []string

	Folded bool
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool {
	return c.Bellow != "" && len(c.Children) > 0
}

// Matches checks whether needle occurs anywhere in the commit data.
func (c *Commit) Matches(needle string, ignoreCase bool) bool {
	candidates := []string{
		string(c.ID),
		c.ShortID,
		c.AuthorName,
		c.AuthorEmail,
		c.CommitterName,
		c.CommitterEmail,
		c.Subject,
	}
	if c.ShortSubject != "" {
		candidates = append(candidates, c.ShortSubject)
	}
	if c.SubjectModule != "" {
		candidates = append(candidates, c.SubjectModule)
	}
	candidates = append(candidates, c.SubtreeModules...)
	for _, r := range c.References {
		candidates = append(candidates, string(r))
	}

	if ignoreCase {
		needle = strings.ToLower(needle)
	}
	for _, cand := range candidates {
		if ignoreCase {
			cand = strings.ToLower(cand)
		}
		if strings.Contains(cand, needle) {
			return true
		}
	}
	return false
}
