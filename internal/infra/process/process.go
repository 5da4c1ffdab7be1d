// Package process hands control to a dispatched command, either by replacing
// the current process image or by spawning the command and mirroring its
// exit status.
package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
)

// Launcher transfers control to the program described by spec. On success
// with process replacement it never returns.
type Launcher interface {
	Launch(ctx context.Context, spec domain.LaunchSpec) error
}

// ExitError carries the exit status of a child that did not exit cleanly.
type ExitError struct {
	Program string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Program, e.Code)
}

// ExitCode extracts the child exit status from err.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// New returns the launcher for a dispatch strategy. Exec falls back to spawn
// where the platform cannot replace the process image.
func New(strategy string, logger *zap.Logger) (Launcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strategy {
	case domain.StrategySpawn:
		return NewSpawner(logger), nil
	case domain.StrategyExec:
		if !execSupported {
			logger.Debug("process replacement unsupported, spawning instead")
			return NewSpawner(logger), nil
		}
		return NewExecer(logger), nil
	default:
		return nil, domain.E(domain.CodeInvalidArgument, "process", fmt.Sprintf("unknown dispatch strategy %q", strategy), nil)
	}
}

// Wait waits for cmd and kills it if ctx ends first.
func Wait(ctx context.Context, cmd *exec.Cmd) error {
	if cmd == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	if ctx == nil {
		return normalizeExitError(cmd, <-done)
	}
	select {
	case err := <-done:
		return normalizeExitError(cmd, err)
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return ctx.Err()
	}
}

func normalizeExitError(cmd *exec.Cmd, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Program: cmd.Path, Code: exitStatus(exitErr.ProcessState)}
	}
	return err
}
