package history

import (
	"errors"
	"fmt"

	"github.com/kalkin/glv/internal/git"
	"github.com/kalkin/glv/internal/models"
)

// ErrNotMerge rejects a merge-only operation invoked on a non-merge commit.
var ErrNotMerge = errors.New("not a merge commit")

// ChildHistory materializes the history a merge commit absorbed, one level
// deeper than the merge itself.
//
// The range runs from the merge base of the merge's two parents up to the
// merged-in branch tip. When the base is a deeper ancestor than the merge's
// own first parent, the expansion stops short of the mainline continuation;
// a synthetic link commit pointing at that continuation is appended so the
// viewer can jump there without expanding further.
func (b *Builder) ChildHistory(commit *models.Commit) ([]*models.Commit, error) {
	if !commit.IsMerge() {
		return nil, fmt.Errorf("expand %s: %w", commit.ID, ErrNotMerge)
	}

	bellow := commit.Bellow
	branchTip := commit.Children[0]

	base, found, err := git.MergeBase(b.WorkingDir, bellow, branchTip)
	if err != nil {
		return nil, err
	}
	revRange := expansionRange(base, found, branchTip)

	level := commit.Level + 1
	result, err := b.CommitsForRange(revRange, level, commit, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	last := result[len(result)-1]
	if found && last.Bellow != "" && last.Bellow != bellow {
		link, err := b.CommitFromOid(last.Bellow, level, true, last)
		if err != nil {
			return nil, err
		}
		result = append(result, link)
	}
	return result, nil
}

// expansionRange picks the revision range covering a merged-in branch: the
// tip alone when the merge base is missing or is the tip itself, otherwise
// everything after the base up to the tip.
func expansionRange(base models.Oid, found bool, branchTip models.Oid) string {
	if !found || base == branchTip {
		return string(branchTip)
	}
	return fmt.Sprintf("%s..%s", base, branchTip)
}
