package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
)

// Spawner runs the child synchronously with inherited standard streams and
// forwards termination signals to it.
type Spawner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	logger *zap.Logger
}

func NewSpawner(logger *zap.Logger) *Spawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spawner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger.Named("spawn"),
	}
}

func (s *Spawner) Launch(ctx context.Context, spec domain.LaunchSpec) error {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	signals := notify(forwardedSignals)
	defer signal.Stop(signals)
	// Not signal.Ignore: an ignored disposition survives exec into the child.
	swallowed := notify(interactiveSignals)
	defer signal.Stop(swallowed)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", spec.Path, err)
	}
	s.logger.Debug("child started", zap.String("program", spec.Path), zap.Int("pid", cmd.Process.Pid))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case sig := <-signals:
				s.logger.Debug("forwarding signal", zap.String("signal", sig.String()))
				_ = cmd.Process.Signal(sig)
			case sig := <-swallowed:
				s.logger.Debug("leaving signal to the child's process group", zap.String("signal", sig.String()))
			case <-stop:
				return
			}
		}
	}()

	err := Wait(ctx, cmd)
	if code, ok := ExitCode(err); ok {
		s.logger.Debug("child exited", zap.String("program", spec.Path), zap.Int("status", code))
	}
	return err
}

func notify(sigs []os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 4)
	if len(sigs) > 0 {
		signal.Notify(ch, sigs...)
	}
	return ch
}
