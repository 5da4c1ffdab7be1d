// Package vcs reads revision metadata from the installation's git working
// copy and synchronizes it with its origin.
package vcs

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"ngsutils/internal/domain"
)

type Revision struct {
	Hash   string
	Short  string
	Time   time.Time
	Branch string
}

// IsWorkingCopy reports whether root is the top of a git working copy.
func IsWorkingCopy(root string) bool {
	_, err := git.PlainOpen(root)
	return err == nil
}

// LatestRevision returns the tip of branch, or of HEAD when the branch does
// not exist.
func LatestRevision(root, branch string) (Revision, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, domain.ErrNotWorkingCopy
		}
		return Revision{}, fmt.Errorf("open repository: %w", err)
	}

	var ref *plumbing.Reference
	if branch != "" {
		ref, err = repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	}
	if ref == nil || err != nil {
		ref, err = repo.Head()
		if err != nil {
			return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
		}
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return Revision{}, fmt.Errorf("read commit %s: %w", ref.Hash(), err)
	}

	hash := ref.Hash().String()
	short := hash
	if len(short) > domain.DefaultRevisionLength {
		short = short[:domain.DefaultRevisionLength]
	}
	name := ""
	if ref.Name().IsBranch() {
		name = ref.Name().Short()
	}
	return Revision{
		Hash:   hash,
		Short:  short,
		Time:   commit.Author.When,
		Branch: name,
	}, nil
}
