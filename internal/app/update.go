package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/config"
	"ngsutils/internal/infra/telemetry"
	"ngsutils/internal/infra/vcs"
)

const updateOp = "update"

// Updater synchronizes the installation's working copy with its remote.
type Updater struct {
	program string
	root    string
	cfg     config.UpdateConfig
	syncer  vcs.Syncer
	logger  *zap.Logger
}

func NewUpdater(inst Installation, syncer vcs.Syncer, logger *zap.Logger) *Updater {
	return &Updater{
		program: inst.Environment.Program,
		root:    inst.Environment.Root,
		cfg:     inst.Config.Update,
		syncer:  syncer,
		logger:  logger.Named("update"),
	}
}

type updateStep struct {
	name string
	run  func(ctx context.Context) error
}

// Update runs `checkout <branch>` then `pull <remote> <branch>`, or a bare
// pull without a branch. Step failures are logged and the update reports
// success, unless strict mode is on: then the first failure is returned.
func (u *Updater) Update(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet(updateOp, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	strict := flags.Bool("strict", u.cfg.Strict, "fail when a git step fails")
	if err := flags.Parse(args); err != nil {
		msg := fmt.Sprintf("Usage: %s update [--strict] [branch]", u.program)
		if !errors.Is(err, pflag.ErrHelp) {
			msg = fmt.Sprintf("%v\n%s", err, msg)
		}
		return domain.E(domain.CodeInvalidArgument, updateOp, msg, err)
	}

	if !vcs.IsWorkingCopy(u.root) {
		return domain.E(domain.CodeFailedPrecond, updateOp,
			fmt.Sprintf("%s is not a git working copy; update it manually", u.root), domain.ErrNotWorkingCopy)
	}

	branch := flags.Arg(0)
	if flags.NArg() > 1 {
		u.logger.Warn("ignoring extra update arguments", zap.Strings("args", flags.Args()[1:]))
	}

	var steps []updateStep
	if branch != "" {
		steps = append(steps, updateStep{name: "checkout", run: func(ctx context.Context) error {
			return u.syncer.Checkout(ctx, branch)
		}})
	}
	steps = append(steps, updateStep{name: "pull", run: func(ctx context.Context) error {
		return u.syncer.Pull(ctx, u.cfg.Remote, branch)
	}})

	for _, step := range steps {
		u.logger.Debug("update step", telemetry.EventField(telemetry.EventUpdateStep), zap.String("step", step.name), zap.String("branch", branch))
		if err := step.run(ctx); err != nil {
			if *strict {
				return err
			}
			u.logger.Warn("update step failed",
				telemetry.EventField(telemetry.EventUpdateFailure),
				zap.String("step", step.name),
				zap.Error(err),
			)
		}
	}
	return nil
}
