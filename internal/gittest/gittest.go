// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// Run executes git in dir with a fixed committer identity and fails the
// test on error. It returns trimmed stdout+stderr.
func Run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test Author",
		"GIT_AUTHOR_EMAIL=author@example.com",
		"GIT_COMMITTER_NAME=Test Committer",
		"GIT_COMMITTER_EMAIL=committer@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// Repo creates an empty repository with a main branch, skipping the test
// when no git executable is available.
func Repo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}
	dir := t.TempDir()
	Run(t, dir, "init", "--quiet")
	Run(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	Run(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

// Commit writes file with the subject as content and commits it, returning
// the new commit hash.
func Commit(t *testing.T, dir, file, subject string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(subject+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	Run(t, dir, "add", file)
	Run(t, dir, "commit", "--quiet", "-m", subject)
	return Run(t, dir, "rev-parse", "HEAD")
}

// MergeFixture builds a repository with two merges:
//
//	c1 -- c2 ------- m1 ------- m2   (main, tag v1.0 on m2)
//	  \             /          /
//	   f1 -- f2 ---'   t1 ----'
//
// The feature branch forks from c1, the topic branch from m1. The returned
// map holds the hashes keyed c1, c2, f1, f2, m1, t1, m2.
func MergeFixture(t *testing.T) (string, map[string]string) {
	t.Helper()
	dir := Repo(t)
	oids := map[string]string{}

	oids["c1"] = Commit(t, dir, "a.txt", "Initial commit")
	oids["c2"] = Commit(t, dir, "b.txt", "feat(core): add parser")

	Run(t, dir, "checkout", "--quiet", "-b", "feature", oids["c1"])
	oids["f1"] = Commit(t, dir, "f.txt", "fix: handle empty input")
	oids["f2"] = Commit(t, dir, "f.txt", "feat: speed up parser")

	Run(t, dir, "checkout", "--quiet", "main")
	Run(t, dir, "merge", "--quiet", "--no-ff", "-m", "Merge branch 'feature'", "feature")
	oids["m1"] = Run(t, dir, "rev-parse", "HEAD")

	Run(t, dir, "checkout", "--quiet", "-b", "topic")
	oids["t1"] = Commit(t, dir, "t.txt", "docs: update readme")

	Run(t, dir, "checkout", "--quiet", "main")
	Run(t, dir, "merge", "--quiet", "--no-ff", "-m", "Merge branch 'topic'", "topic")
	oids["m2"] = Run(t, dir, "rev-parse", "HEAD")

	Run(t, dir, "tag", "v1.0")
	return dir, oids
}
