// Package history materializes the first-parent commit graph and expands
// merge commits into the branch histories they absorbed.
package history

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kalkin/glv/internal/git"
	"github.com/kalkin/glv/internal/models"
)

// recordFields is the number of fields one log record carries.
const recordFields = 14

// ParseError reports a log record with fewer fields than the fixed schema
// requires. Malformed process output is an expected failure, not a bug.
type ParseError struct {
	Got  int
	Want int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("log record has %d fields, want %d", e.Got, e.Want)
}

// ModuleDetector reports which subtree modules a commit touched.
type ModuleDetector interface {
	ChangedModules(workingDir string, oid models.Oid) []string
}

// AncestorChecker answers whether ancestor is an ancestor of descendant.
// The interactive path plugs in an asynchronous implementation here so
// parsing never blocks on a process spawn.
type AncestorChecker interface {
	IsAncestor(workingDir string, ancestor, descendant models.Oid) (bool, error)
}

// GitAncestors answers ancestor checks with a synchronous git query.
type GitAncestors struct{}

func (GitAncestors) IsAncestor(workingDir string, ancestor, descendant models.Oid) (bool, error) {
	return git.IsAncestor(workingDir, ancestor, descendant)
}

var scopeRe = regexp.MustCompile(`^\w+\((.+)\): (.+)$`)

// Parser turns raw log records into Commit values.
type Parser struct {
	WorkingDir string
	Modules    ModuleDetector
	Ancestors  AncestorChecker
}

// Parse builds a Commit from one delimited log record. above is the
// structural predecessor from the same build pass, nil for the first
// record.
func (p *Parser) Parse(record string, level int, isLink bool, above *models.Commit) (*models.Commit, error) {
	fields := strings.Split(record, git.FieldSeparator)
	// rev-list prints a "commit <hash>" line ahead of the first separator;
	// fields[0] is that noise.
	if len(fields) < recordFields+1 {
		return nil, &ParseError{Got: len(fields) - 1, Want: recordFields}
	}

	c := &models.Commit{
		ID:               models.Oid(fields[1]),
		ShortID:          fields[2],
		AuthorName:       fields[5],
		AuthorEmail:      fields[6],
		AuthorDate:       fields[7],
		AuthorRelDate:    fields[8],
		CommitterName:    fields[9],
		CommitterEmail:   fields[10],
		CommitterDate:    fields[11],
		CommitterRelDate: fields[12],
		Subject:          fields[13],
		Body:             fields[14],
		Level:            level,
		IsCommitLink:     isLink,
		Folded:           true,
	}

	parents := strings.Fields(fields[3])
	if len(parents) > 0 {
		c.Bellow = models.Oid(parents[0])
		for _, parent := range parents[1:] {
			c.Children = append(c.Children, models.Oid(parent))
		}
	}

	p.parseDecorations(c, fields[4])

	if err := p.markForkPoint(c, above); err != nil {
		return nil, err
	}

	c.Icon = iconFor(c.Subject)
	if m := scopeRe.FindStringSubmatch(c.Subject); m != nil {
		c.SubjectModule = m[1]
		c.ShortSubject = m[2]
	}

	if p.Modules != nil {
		c.SubtreeModules = p.Modules.ChangedModules(p.WorkingDir, c.ID)
	}

	return c, nil
}

// parseDecorations classifies the ref names git attached to the commit.
func (p *Parser) parseDecorations(c *models.Commit, decorations string) {
	for _, token := range strings.Split(decorations, ", ") {
		switch {
		case token == "":
		case token == "HEAD":
			c.IsHead = true
		case strings.HasPrefix(token, "HEAD -> "):
			c.IsHead = true
			branch := models.GitRef(strings.TrimPrefix(token, "HEAD -> "))
			c.Branches = append(c.Branches, branch)
			c.References = append(c.References, branch)
		case strings.HasPrefix(token, "tag: "):
			tag := models.GitRef(strings.TrimPrefix(token, "tag: "))
			c.Tags = append(c.Tags, tag)
			c.References = append(c.References, tag)
		default:
			branch := models.GitRef(token)
			c.Branches = append(c.Branches, branch)
			c.References = append(c.References, branch)
		}
	}
}

// markForkPoint records the structural predecessor and decides whether c is
// the mainline commit where the predecessor's merged branch forked off.
// That needs an ancestor check against the predecessor's first merge
// parent, the expensive query delegated to the AncestorChecker.
func (p *Parser) markForkPoint(c *models.Commit, above *models.Commit) error {
	if above == nil {
		return nil
	}
	c.Above = above.ID
	if len(above.Children) == 0 || above.Children[0] == c.ID {
		return nil
	}
	if above.IsMerge() {
		forked, err := p.Ancestors.IsAncestor(p.WorkingDir, c.ID, above.Children[0])
		if err != nil {
			return fmt.Errorf("fork point check for %s: %w", c.ID, err)
		}
		c.IsForkPoint = forked
	}
	return nil
}
