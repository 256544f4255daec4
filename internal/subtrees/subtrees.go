// Package subtrees reports which configured subtree modules a commit
// touches.
package subtrees

import (
	"sort"
	"strings"

	"github.com/kalkin/glv/internal/git"
	"github.com/kalkin/glv/internal/models"
)

// SubtreeConfig names one subtree module and the path prefix it lives under.
type SubtreeConfig struct {
	Name string
	Path string
}

// Detector maps the files a commit changed onto subtree module names.
type Detector struct {
	Subtrees []SubtreeConfig
}

// ChangedModules returns the names of the configured subtrees touched by
// the commit, sorted and de-duplicated. The result is advisory: with no
// subtrees configured, or when git fails, it is empty.
func (d *Detector) ChangedModules(workingDir string, oid models.Oid) []string {
	if len(d.Subtrees) == 0 {
		return nil
	}
	out, err := git.Run(workingDir, "diff-tree", "--no-commit-id", "--name-only", "-r", string(oid))
	if err != nil {
		return nil
	}
	return modulesForPaths(strings.Split(strings.TrimSpace(out), "\n"), d.Subtrees)
}

func modulesForPaths(paths []string, subtrees []SubtreeConfig) []string {
	seen := map[string]bool{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		for _, s := range subtrees {
			if p == s.Path || strings.HasPrefix(p, s.Path+"/") {
				seen[s.Name] = true
			}
		}
	}

	var result []string
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
