// Package git shells out to the git executable and exposes the handful of
// plumbing queries the history viewer needs.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kalkin/glv/internal/models"
)

// RecordFormat makes rev-list emit the 14 commit fields the parser expects,
// separated by the unit separator and terminated by the record separator.
// Field order: hash, abbreviated hash, parent hashes, decorations, author
// name/email/date/relative-date, committer name/email/date/relative-date,
// subject, body.
const RecordFormat = "--format=%x1f%H%x1f%h%x1f%P%x1f%D%x1f%aN%x1f%aE%x1f%aI%x1f%ar%x1f%cN%x1f%cE%x1f%cI%x1f%cr%x1f%s%x1f%b%x1e"

// RecordSeparator splits the rev-list output into individual records.
const RecordSeparator = "\x1e"

// FieldSeparator splits one record into its fields.
const FieldSeparator = "\x1f"

// ErrNoRevisions marks the "no revisions match" outcome (git exit code 128)
// so count-oriented callers can tell an empty range from a hard failure.
var ErrNoRevisions = errors.New("no revisions match")

// GitError reports a git invocation that could not be spawned or exited
// non-zero.
type GitError struct {
	Code    int
	Message string
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git exited with code %d: %s", e.Code, e.Message)
}

// Run executes git with the given arguments in workingDir and returns its
// stdout. A spawn failure or non-zero exit yields a *GitError.
func Run(workingDir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = workingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &GitError{
				Code:    exitErr.ExitCode(),
				Message: strings.TrimSpace(stderr.String()),
			}
		}
		return "", &GitError{Code: -1, Message: err.Error()}
	}

	return stdout.String(), nil
}

// RevList runs rev-list with the given arguments.
func RevList(workingDir string, args ...string) (string, error) {
	return Run(workingDir, append([]string{"rev-list"}, args...)...)
}

// MergeBase returns the nearest common ancestor of a and b. The second
// result is false when the revisions share no history.
func MergeBase(workingDir string, a, b models.Oid) (models.Oid, bool, error) {
	out, err := Run(workingDir, "merge-base", string(a), string(b))
	if err != nil {
		var gitErr *GitError
		// Exit code 1 means "no common ancestor", not a failure.
		if errors.As(err, &gitErr) && gitErr.Code == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return models.Oid(strings.TrimSpace(out)), true, nil
}

// IsAncestor reports whether ancestor is an ancestor of descendant.
func IsAncestor(workingDir string, ancestor, descendant models.Oid) (bool, error) {
	_, err := Run(workingDir, "merge-base", "--is-ancestor", string(ancestor), string(descendant))
	if err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) && gitErr.Code == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountCommits counts the first-parent history of revRange, optionally
// scoped to paths. A range matching no revisions yields ErrNoRevisions.
func CountCommits(workingDir, revRange string, paths []string) (int, error) {
	args := []string{"--first-parent", "--count", revRange}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	out, err := RevList(workingDir, args...)
	if err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) && gitErr.Code == 128 {
			return 0, ErrNoRevisions
		}
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parse rev-list count: %w", err)
	}
	return n, nil
}

// IsWorkTree reports whether workingDir is inside a git work tree.
func IsWorkTree(workingDir string) bool {
	out, err := Run(workingDir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// HeadName returns the symbolic name of HEAD, falling back to "HEAD" for a
// detached head.
func HeadName(workingDir string) string {
	out, err := Run(workingDir, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "HEAD"
	}
	return strings.TrimSpace(out)
}
