package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/envutil"
	"ngsutils/internal/infra/process"
	"ngsutils/internal/infra/resolver"
	"ngsutils/internal/infra/telemetry"
)

const dispatchOp = "dispatch"

// Dispatcher routes one invocation request to exactly one mode handler.
type Dispatcher struct {
	inst     Installation
	resolver *resolver.Resolver
	launcher process.Launcher
	reporter *Reporter
	updater  *Updater
	metrics  domain.Metrics
	environ  []string
	stderr   io.Writer
	logger   *zap.Logger
	now      func() time.Time
}

func NewDispatcher(
	opts Options,
	inst Installation,
	commands *resolver.Resolver,
	launcher process.Launcher,
	reporter *Reporter,
	updater *Updater,
	metrics domain.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		inst:     inst,
		resolver: commands,
		launcher: launcher,
		reporter: reporter,
		updater:  updater,
		metrics:  metrics,
		environ:  opts.environ(),
		stderr:   opts.stderr(),
		logger:   logger.Named("dispatcher"),
		now:      time.Now,
	}
}

// Run parses raw arguments and dispatches them. The update verb is reserved
// only for the self-update family.
func (d *Dispatcher) Run(ctx context.Context, args []string) error {
	return d.Dispatch(ctx, domain.ParseRequest(args, d.inst.Environment.Family.SelfUpdate))
}

// Dispatch hands req to its mode. For launched commands the child's exit
// status comes back as a *process.ExitError; usage returns ErrUsage.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.InvocationRequest) error {
	id, ok := telemetry.InvocationIDFromContext(ctx)
	if !ok {
		id = telemetry.NewInvocationID()
		ctx = telemetry.WithInvocationID(ctx, id)
	}
	logger := d.logger.With(
		telemetry.InvocationIDField(id),
		telemetry.FamilyField(d.inst.Environment.Family.Name),
		telemetry.ModeField(string(req.Mode)),
	)
	logger.Debug("dispatching", telemetry.EventField(telemetry.EventDispatch), telemetry.CommandField(req.Command))

	switch req.Mode {
	case domain.ModeUsage:
		return d.reporter.Usage(d.stderr)
	case domain.ModeUpdate:
		if !d.inst.Environment.Family.SelfUpdate {
			return domain.UnknownCommand(dispatchOp, domain.VerbUpdate)
		}
		return d.updater.Update(ctx, req.Args)
	case domain.ModePlain, domain.ModeHelp, domain.ModeProfile:
		return d.launch(ctx, logger, id, req)
	default:
		return domain.E(domain.CodeInternal, dispatchOp, fmt.Sprintf("unsupported mode %q", req.Mode), nil)
	}
}

func (d *Dispatcher) launch(ctx context.Context, logger *zap.Logger, id string, req domain.InvocationRequest) error {
	cmd, err := d.resolver.Resolve(d.inst.Environment.Family, req.Command)
	if err != nil {
		logger.Debug("command not resolved", telemetry.EventField(telemetry.EventUnknownCommand), telemetry.CommandField(req.Command))
		return err
	}

	spec, err := d.launchSpec(cmd, req, id)
	if err != nil {
		return err
	}
	if req.Mode == domain.ModeProfile {
		fmt.Fprintf(d.stderr, "Profiling output: %s\n", d.profileOutputPath())
	}

	logger.Debug("launching", telemetry.CommandField(cmd.Name), zap.String("argv", spec.String()))
	start := d.now()
	err = d.launcher.Launch(ctx, spec)
	duration := d.now().Sub(start)

	status := exitStatus(err)
	logger.Debug("child finished",
		telemetry.EventField(telemetry.EventChildExit),
		telemetry.CommandField(cmd.Name),
		telemetry.StatusField(status),
		telemetry.DurationField(duration),
	)
	d.metrics.ObserveDispatch(domain.DispatchMetric{
		Family:   d.inst.Environment.Family.Name,
		Command:  cmd.Name,
		Mode:     req.Mode,
		ExitCode: status,
		Duration: duration,
		Finished: d.now(),
	})
	if flushErr := d.metrics.Flush(); flushErr != nil {
		logger.Warn("metrics flush failed", zap.Error(flushErr))
	}
	return err
}

// launchSpec builds the child's argv and environment. Scripts run through the
// interpreter found on the child's PATH; shell artifacts run directly.
func (d *Dispatcher) launchSpec(cmd domain.ResolvedCommand, req domain.InvocationRequest, id string) (domain.LaunchSpec, error) {
	runtimeCfg := d.inst.Config.Runtime
	env := envutil.BuildChildEnv(d.environ, envutil.RuntimeOptions{
		Root:         d.inst.Environment.Root,
		Venv:         runtimeCfg.Venv,
		Family:       d.inst.Environment.Family.Name,
		InvocationID: id,
	})

	var args []string
	if req.Mode == domain.ModeHelp {
		args = []string{runtimeCfg.HelpFlag}
	} else {
		args = append([]string(nil), req.Args...)
	}

	if cmd.Kind == domain.KindShell {
		if req.Mode == domain.ModeProfile {
			return domain.LaunchSpec{}, domain.E(domain.CodeFailedPrecond, dispatchOp,
				fmt.Sprintf("Command '%s' is a shell script and cannot be profiled", cmd.Name), domain.ErrProfileUnsupported)
		}
		return domain.LaunchSpec{Path: cmd.Path, Args: args, Env: env}, nil
	}

	interpreter, err := envutil.LookPath(env, runtimeCfg.Interpreter)
	if err != nil {
		return domain.LaunchSpec{}, domain.E(domain.CodeFailedPrecond, dispatchOp,
			fmt.Sprintf("cannot run '%s': %v", cmd.Name, err), err)
	}

	argv := make([]string, 0, len(args)+5)
	if req.Mode == domain.ModeProfile {
		argv = append(argv, "-m", d.inst.Config.Profile.Module, "-o", d.inst.Config.Profile.Output)
	}
	argv = append(argv, cmd.Path)
	argv = append(argv, args...)
	return domain.LaunchSpec{Path: interpreter, Args: argv, Env: env}, nil
}

func (d *Dispatcher) profileOutputPath() string {
	output := d.inst.Config.Profile.Output
	abs, err := filepath.Abs(output)
	if err != nil {
		return output
	}
	return abs
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := process.ExitCode(err); ok {
		return code
	}
	return 1
}
