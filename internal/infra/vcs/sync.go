package vcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"ngsutils/internal/infra/process"
)

// Syncer updates a working copy from its remote.
type Syncer interface {
	Checkout(ctx context.Context, branch string) error
	Pull(ctx context.Context, remote, branch string) error
}

// GitCLI drives the git binary. Output goes straight to the user.
type GitCLI struct {
	Dir    string
	Git    string
	Stdout io.Writer
	Stderr io.Writer

	logger *zap.Logger
}

func NewGitCLI(dir string, logger *zap.Logger) *GitCLI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitCLI{
		Dir:    dir,
		Git:    "git",
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger.Named("git"),
	}
}

func (g *GitCLI) Checkout(ctx context.Context, branch string) error {
	return g.run(ctx, "checkout", branch)
}

// Pull synchronizes the current branch with its upstream, or with
// remote/branch when a branch is given.
func (g *GitCLI) Pull(ctx context.Context, remote, branch string) error {
	if branch == "" {
		return g.run(ctx, "pull")
	}
	return g.run(ctx, "pull", remote, branch)
}

func (g *GitCLI) run(ctx context.Context, args ...string) error {
	full := append([]string{"-C", g.Dir}, args...)
	g.logger.Debug("running git", zap.String("args", strings.Join(full, " ")))

	cmd := exec.Command(g.Git, full...)
	cmd.Stdout = g.Stdout
	cmd.Stderr = g.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	if err := process.Wait(ctx, cmd); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}
