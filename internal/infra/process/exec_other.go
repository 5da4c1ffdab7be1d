//go:build !unix

package process

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
)

const execSupported = false

var (
	forwardedSignals   = []os.Signal{}
	interactiveSignals = []os.Signal{os.Interrupt}
)

type Execer struct {
	logger *zap.Logger
}

func NewExecer(logger *zap.Logger) *Execer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Execer{logger: logger.Named("exec")}
}

func (e *Execer) Launch(context.Context, domain.LaunchSpec) error {
	return errors.New("process replacement is not supported on this platform")
}

func exitStatus(state *os.ProcessState) int {
	if state == nil {
		return 1
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
