package history

import (
	"fmt"
	"strings"

	"github.com/kalkin/glv/internal/git"
	"github.com/kalkin/glv/internal/models"
)

// Builder materializes first-parent history ranges.
type Builder struct {
	WorkingDir string
	Parser     *Parser
}

// NewBuilder wires a builder with a synchronous ancestor checker.
func NewBuilder(workingDir string, modules ModuleDetector) *Builder {
	return &Builder{
		WorkingDir: workingDir,
		Parser: &Parser{
			WorkingDir: workingDir,
			Modules:    modules,
			Ancestors:  GitAncestors{},
		},
	}
}

// Length counts the first-parent history of revRange. A range matching no
// revisions yields git.ErrNoRevisions.
func (b *Builder) Length(revRange string, paths []string) (int, error) {
	return git.CountCommits(b.WorkingDir, revRange, paths)
}

// CommitsForRange runs a first-parent log query over revRange and parses
// the records in order, threading each parsed commit as the structural
// predecessor of the next. The first record uses above, which may be nil.
// skip and max are ignored when zero or negative. The result is in git's
// native newest-first order.
func (b *Builder) CommitsForRange(revRange string, level int, above *models.Commit, paths []string, skip, max int) ([]*models.Commit, error) {
	args := []string{"--first-parent", git.RecordFormat}
	if skip > 0 {
		args = append(args, fmt.Sprintf("--skip=%d", skip))
	}
	if max > 0 {
		args = append(args, fmt.Sprintf("--max-count=%d", max))
	}
	args = append(args, revRange)
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	out, err := git.RevList(b.WorkingDir, args...)
	if err != nil {
		return nil, err
	}
	return b.parseRecords(out, level, above)
}

// CommitFromOid fetches and parses a single commit record.
func (b *Builder) CommitFromOid(oid models.Oid, level int, isLink bool, above *models.Commit) (*models.Commit, error) {
	out, err := git.RevList(b.WorkingDir, git.RecordFormat, "--max-count=1", string(oid))
	if err != nil {
		return nil, err
	}
	for _, record := range strings.Split(out, git.RecordSeparator) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		return b.Parser.Parse(record, level, isLink, above)
	}
	return nil, fmt.Errorf("no record for %s", oid)
}

func (b *Builder) parseRecords(out string, level int, above *models.Commit) ([]*models.Commit, error) {
	var commits []*models.Commit
	for _, record := range strings.Split(out, git.RecordSeparator) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		c, err := b.Parser.Parse(record, level, false, above)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
		above = c
	}
	return commits, nil
}

// FindOid returns the index of the first non-link commit with the given id
// at or after from, or -1 when it is not materialized.
func FindOid(commits []*models.Commit, from int, oid models.Oid) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(commits); i++ {
		if commits[i].ID == oid && !commits[i].IsCommitLink {
			return i
		}
	}
	return -1
}
