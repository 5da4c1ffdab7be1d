//go:build unix

package process

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"ngsutils/internal/domain"
)

const execSupported = true

// Keyboard signals already reach a foreground child through its process
// group, so they are swallowed instead of forwarded.
var (
	forwardedSignals   = []os.Signal{unix.SIGTERM, unix.SIGHUP}
	interactiveSignals = []os.Signal{unix.SIGINT, unix.SIGQUIT}
)

// Execer replaces the dispatcher process with the child.
type Execer struct {
	logger *zap.Logger
}

func NewExecer(logger *zap.Logger) *Execer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Execer{logger: logger.Named("exec")}
}

func (e *Execer) Launch(ctx context.Context, spec domain.LaunchSpec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if spec.Dir != "" {
		if err := os.Chdir(spec.Dir); err != nil {
			return fmt.Errorf("chdir %s: %w", spec.Dir, err)
		}
	}
	e.logger.Debug("replacing process", zap.String("program", spec.Path), zap.Strings("args", spec.Args))
	_ = e.logger.Sync()

	err := unix.Exec(spec.Path, spec.Argv(), spec.Env)
	return fmt.Errorf("exec %s: %w", spec.Path, err)
}

func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return 1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
