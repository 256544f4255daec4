package history

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalkin/glv/internal/models"
)

type stubModules struct {
	modules []string
	calls   []models.Oid
}

func (s *stubModules) ChangedModules(_ string, oid models.Oid) []string {
	s.calls = append(s.calls, oid)
	return s.modules
}

type stubAncestors struct {
	result bool
	err    error
	calls  [][2]models.Oid
}

func (s *stubAncestors) IsAncestor(_ string, ancestor, descendant models.Oid) (bool, error) {
	s.calls = append(s.calls, [2]models.Oid{ancestor, descendant})
	return s.result, s.err
}

// record assembles one log record the way rev-list emits it: a noise line
// ahead of the first unit separator, then the 14 fields.
func record(hash, short, parents, decorations, subject string) string {
	fields := []string{
		hash, short, parents, decorations,
		"Alice", "alice@example.com", "2024-05-01T10:00:00+02:00", "3 days ago",
		"Bob", "bob@example.com", "2024-05-01T11:00:00+02:00", "3 days ago",
		subject, "some body\n",
	}
	return "commit " + hash + "\n\x1f" + strings.Join(fields, "\x1f")
}

func newParser() *Parser {
	return &Parser{WorkingDir: "/repo", Ancestors: &stubAncestors{}}
}

func TestParseRootCommit(t *testing.T) {
	c, err := newParser().Parse(record("aaa", "aaa1", "", "", "Initial commit"), 0, false, nil)
	require.NoError(t, err)

	assert.Equal(t, models.Oid("aaa"), c.ID)
	assert.Equal(t, "aaa1", c.ShortID)
	assert.Empty(t, c.Bellow)
	assert.Empty(t, c.Children)
	assert.False(t, c.IsMerge())
	assert.Equal(t, "Alice", c.AuthorName)
	assert.Equal(t, "Bob", c.CommitterName)
	assert.True(t, c.Folded)
}

func TestParseMergeCommit(t *testing.T) {
	c, err := newParser().Parse(record("ccc", "ccc1", "A B", "", "Merge branch 'feature'"), 0, false, nil)
	require.NoError(t, err)

	assert.Equal(t, models.Oid("A"), c.Bellow)
	assert.Equal(t, []models.Oid{"B"}, c.Children)
	assert.True(t, c.IsMerge())
}

func TestParseOctopusMerge(t *testing.T) {
	c, err := newParser().Parse(record("ccc", "ccc1", "A B C", "", "Merge branches"), 0, false, nil)
	require.NoError(t, err)

	assert.Equal(t, models.Oid("A"), c.Bellow)
	assert.Equal(t, []models.Oid{"B", "C"}, c.Children)
}

func TestParseDecorations(t *testing.T) {
	tests := []struct {
		name        string
		decorations string
		head        bool
		branches    []models.GitRef
		tags        []models.GitRef
		references  []models.GitRef
	}{
		{name: "empty", decorations: ""},
		{name: "detached head", decorations: "HEAD", head: true},
		{
			name:        "head arrow",
			decorations: "HEAD -> main",
			head:        true,
			branches:    []models.GitRef{"main"},
			references:  []models.GitRef{"main"},
		},
		{
			name:        "tag",
			decorations: "tag: v1.0",
			tags:        []models.GitRef{"v1.0"},
			references:  []models.GitRef{"v1.0"},
		},
		{
			name:        "plain branch",
			decorations: "origin/main",
			branches:    []models.GitRef{"origin/main"},
			references:  []models.GitRef{"origin/main"},
		},
		{
			name:        "mixed",
			decorations: "HEAD -> main, tag: v1.0, origin/main",
			head:        true,
			branches:    []models.GitRef{"main", "origin/main"},
			tags:        []models.GitRef{"v1.0"},
			references:  []models.GitRef{"main", "v1.0", "origin/main"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newParser().Parse(record("aaa", "aaa1", "", tt.decorations, "subject"), 0, false, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.head, c.IsHead)
			assert.Equal(t, tt.branches, c.Branches)
			assert.Equal(t, tt.tags, c.Tags)
			assert.Equal(t, tt.references, c.References)
		})
	}
}

func TestParseShortRecord(t *testing.T) {
	_, err := newParser().Parse("commit aaa\n\x1faaa\x1faaa1\x1f\x1f", 0, false, nil)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 14, parseErr.Want)
	assert.Less(t, parseErr.Got, parseErr.Want)
}

func TestSubjectIcons(t *testing.T) {
	tests := []struct {
		subject string
		icon    string
	}{
		{"fix: repair parser", " "},
		{"bugfix: repair parser", " "},
		{"docs: update readme", "✎ "},
		{"feat: shiny", "➕"},
		{"test(core): coverage", " "},
		{"totally unclassified subject", "  "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.icon, iconFor(tt.subject), "subject %q", tt.subject)
	}
}

func TestParseScopeExtraction(t *testing.T) {
	c, err := newParser().Parse(record("aaa", "aaa1", "", "", "feat(core): add X"), 0, false, nil)
	require.NoError(t, err)

	assert.Equal(t, "core", c.SubjectModule)
	assert.Equal(t, "add X", c.ShortSubject)
}

func TestParseNoScope(t *testing.T) {
	c, err := newParser().Parse(record("aaa", "aaa1", "", "", "fix something"), 0, false, nil)
	require.NoError(t, err)

	assert.Empty(t, c.SubjectModule)
	assert.Empty(t, c.ShortSubject)
}

func TestParseCallsModuleDetector(t *testing.T) {
	modules := &stubModules{modules: []string{"vendor/lib"}}
	p := &Parser{WorkingDir: "/repo", Modules: modules, Ancestors: &stubAncestors{}}

	c, err := p.Parse(record("aaa", "aaa1", "", "", "subject"), 0, false, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"vendor/lib"}, c.SubtreeModules)
	assert.Equal(t, []models.Oid{"aaa"}, modules.calls)
}

func TestForkPointRule(t *testing.T) {
	tests := []struct {
		name      string
		above     *models.Commit
		result    bool
		wantAbove models.Oid
		wantFork  bool
		wantCheck bool
	}{
		{
			name: "no predecessor",
		},
		{
			name:      "predecessor without secondary parents",
			above:     &models.Commit{ID: "P", Bellow: "X"},
			wantAbove: "P",
		},
		{
			name:      "merge predecessor, different branch tip, ancestor",
			above:     &models.Commit{ID: "P", Bellow: "X", Children: []models.Oid{"T"}},
			result:    true,
			wantAbove: "P",
			wantFork:  true,
			wantCheck: true,
		},
		{
			name:      "merge predecessor, different branch tip, not ancestor",
			above:     &models.Commit{ID: "P", Bellow: "X", Children: []models.Oid{"T"}},
			wantAbove: "P",
			wantCheck: true,
		},
		{
			name:      "commit is the branch tip itself",
			above:     &models.Commit{ID: "P", Bellow: "X", Children: []models.Oid{"C"}},
			wantAbove: "P",
		},
		{
			name:      "predecessor with secondary parent but no first parent",
			above:     &models.Commit{ID: "P", Children: []models.Oid{"T"}},
			wantAbove: "P",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ancestors := &stubAncestors{result: tt.result}
			p := &Parser{WorkingDir: "/repo", Ancestors: ancestors}

			c, err := p.Parse(record("C", "C1", "X", "", "subject"), 0, false, tt.above)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAbove, c.Above)
			assert.Equal(t, tt.wantFork, c.IsForkPoint)
			if tt.wantCheck {
				require.Len(t, ancestors.calls, 1)
				assert.Equal(t, [2]models.Oid{"C", "T"}, ancestors.calls[0])
			} else {
				assert.Empty(t, ancestors.calls)
			}
		})
	}
}

func TestForkPointCheckFailure(t *testing.T) {
	ancestors := &stubAncestors{err: errors.New("spawn failed")}
	p := &Parser{WorkingDir: "/repo", Ancestors: ancestors}
	above := &models.Commit{ID: "P", Bellow: "X", Children: []models.Oid{"T"}}

	_, err := p.Parse(record("C", "C1", "X", "", "subject"), 0, false, above)
	assert.Error(t, err)
}
