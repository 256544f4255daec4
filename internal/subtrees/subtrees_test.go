package subtrees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalkin/glv/internal/gittest"
	"github.com/kalkin/glv/internal/models"
)

func TestModulesForPaths(t *testing.T) {
	subtrees := []SubtreeConfig{
		{Name: "libfoo", Path: "vendor/foo"},
		{Name: "libbar", Path: "vendor/bar"},
	}

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{name: "no paths"},
		{name: "unrelated path", paths: []string{"src/main.go"}},
		{name: "inside subtree", paths: []string{"vendor/foo/a.c"}, want: []string{"libfoo"}},
		{name: "subtree root itself", paths: []string{"vendor/foo"}, want: []string{"libfoo"}},
		{name: "prefix is not a directory match", paths: []string{"vendor/foobar/a.c"}},
		{
			name:  "several subtrees, deduplicated and sorted",
			paths: []string{"vendor/bar/x", "vendor/foo/y", "vendor/foo/z"},
			want:  []string{"libbar", "libfoo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, modulesForPaths(tt.paths, subtrees))
		})
	}
}

func TestChangedModulesWithoutSubtrees(t *testing.T) {
	d := &Detector{}
	assert.Nil(t, d.ChangedModules("/nowhere", "abc"))
}

func TestChangedModules(t *testing.T) {
	dir := gittest.Repo(t)
	gittest.Commit(t, dir, "a.txt", "Initial commit")
	oid := gittest.Commit(t, dir, "vendor/foo/lib.c", "feat: vendor foo")

	d := &Detector{Subtrees: []SubtreeConfig{{Name: "libfoo", Path: "vendor/foo"}}}
	assert.Equal(t, []string{"libfoo"}, d.ChangedModules(dir, models.Oid(oid)))
}

func TestChangedModulesBadRepo(t *testing.T) {
	d := &Detector{Subtrees: []SubtreeConfig{{Name: "x", Path: "x"}}}
	require.Nil(t, d.ChangedModules("/nowhere/at/all", "abc"))
}
