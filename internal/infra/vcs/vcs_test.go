package vcs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/process"
)

var commitTime = time.Date(2014, 5, 6, 7, 8, 9, 0, time.UTC)

func initRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "VERSION", "0.5.9\n", commitTime)
	return repo
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, contents string, when time.Time) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	sig := &object.Signature{Name: "ngs", Email: "ngs@example.org", When: when}
	hash, err := wt.Commit("update "+name, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	return hash.String()
}

func TestLatestRevision(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	head, err := repo.Head()
	require.NoError(t, err)

	rev, err := LatestRevision(dir, head.Name().Short())
	require.NoError(t, err)
	require.Equal(t, head.Hash().String(), rev.Hash)
	require.Equal(t, rev.Hash[:7], rev.Short)
	require.True(t, commitTime.Equal(rev.Time), "time %s", rev.Time)
	require.Equal(t, head.Name().Short(), rev.Branch)
}

func TestLatestRevisionFallsBackToHEAD(t *testing.T) {
	dir := t.TempDir()
	repo := initRepo(t, dir)
	head, err := repo.Head()
	require.NoError(t, err)

	rev, err := LatestRevision(dir, "no-such-branch")
	require.NoError(t, err)
	require.Equal(t, head.Hash().String(), rev.Hash)
}

func TestLatestRevisionOutsideRepository(t *testing.T) {
	dir := t.TempDir()
	require.False(t, IsWorkingCopy(dir))

	_, err := LatestRevision(dir, "master")
	require.ErrorIs(t, err, domain.ErrNotWorkingCopy)
}

func TestIsWorkingCopy(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	require.True(t, IsWorkingCopy(dir))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func TestGitCLI_PullFastForwards(t *testing.T) {
	requireGit(t)
	base := t.TempDir()
	originDir := filepath.Join(base, "origin")
	origin := initRepo(t, originDir)

	cloneDir := filepath.Join(base, "clone")
	_, err := git.PlainClone(cloneDir, false, &git.CloneOptions{URL: originDir})
	require.NoError(t, err)

	latest := commitFile(t, origin, originDir, "VERSION", "0.6.0\n", commitTime.Add(time.Hour))

	var out bytes.Buffer
	cli := NewGitCLI(cloneDir, zap.NewNop())
	cli.Stdout = &out
	cli.Stderr = &out
	require.NoError(t, cli.Pull(context.Background(), "", ""), out.String())

	rev, err := LatestRevision(cloneDir, "")
	require.NoError(t, err)
	require.Equal(t, latest, rev.Hash)
}

func TestGitCLI_CheckoutUnknownBranchReportsStatus(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)

	var out bytes.Buffer
	cli := NewGitCLI(dir, zap.NewNop())
	cli.Stdout = &out
	cli.Stderr = &out

	err := cli.Checkout(context.Background(), "does-not-exist")
	require.Error(t, err)
	code, ok := process.ExitCode(err)
	require.True(t, ok)
	require.NotZero(t, code)
}
