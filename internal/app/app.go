package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/config"
	"ngsutils/internal/infra/environment"
	"ngsutils/internal/infra/envutil"
	"ngsutils/internal/infra/process"
	"ngsutils/internal/infra/resolver"
	"ngsutils/internal/infra/telemetry"
	"ngsutils/internal/infra/vcs"
)

// Options carries everything one invocation needs from its caller.
type Options struct {
	// InvokedPath is argv[0]; its base name selects the tool family.
	InvokedPath string
	// Environ is the parent environment the child's is derived from.
	Environ []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logging telemetry.Logging

	// Launcher and Syncer replace the configured implementations when set.
	Launcher process.Launcher
	Syncer   vcs.Syncer
}

func (o Options) environ() []string {
	if o.Environ == nil {
		return os.Environ()
	}
	return o.Environ
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

// Installation is the resolved environment with the configuration it was
// resolved against.
type Installation struct {
	Environment environment.Environment
	Config      config.Config
}

// NewInstallation locates the installation root, loads its configuration and
// resolves the active family.
func NewInstallation(ctx context.Context, opts Options, envResolver *environment.Resolver, loader *config.Loader) (Installation, error) {
	override := envutil.Value(opts.environ(), domain.EnvRoot)
	root, _, err := envResolver.Root(opts.InvokedPath, override)
	if err != nil {
		return Installation{}, domain.Wrap(domain.CodeUnknownFamily, "bootstrap", err)
	}

	cfg, err := loader.Load(ctx, root)
	if err != nil {
		return Installation{}, domain.E(domain.CodeInvalidArgument, "bootstrap", fmt.Sprintf("load configuration: %v", err), err)
	}
	if cfg.Root == "" {
		cfg.Root = override
	}
	if opts.Logging.Logger != nil {
		if err := opts.Logging.SetLevel(cfg.Log.Level); err != nil {
			return Installation{}, domain.E(domain.CodeInvalidArgument, "bootstrap", fmt.Sprintf("log level: %v", err), err)
		}
	}

	env, err := envResolver.Resolve(opts.InvokedPath, cfg)
	if err != nil {
		return Installation{}, err
	}
	return Installation{Environment: env, Config: cfg}, nil
}

// NewCommandResolver builds the resolver for the configured artifact
// extensions.
func NewCommandResolver(inst Installation, logger *zap.Logger) *resolver.Resolver {
	return resolver.New(logger, inst.Config.Runtime.ScriptExt, inst.Config.Runtime.ShellExt)
}

// NewLauncher returns the launcher for the configured dispatch strategy.
func NewLauncher(opts Options, inst Installation, logger *zap.Logger) (process.Launcher, error) {
	if opts.Launcher != nil {
		return opts.Launcher, nil
	}
	launcher, err := process.New(inst.Config.Dispatch.Strategy, logger)
	if err != nil {
		return nil, err
	}
	if spawner, ok := launcher.(*process.Spawner); ok {
		if opts.Stdin != nil {
			spawner.Stdin = opts.Stdin
		}
		if opts.Stdout != nil {
			spawner.Stdout = opts.Stdout
		}
		if opts.Stderr != nil {
			spawner.Stderr = opts.Stderr
		}
	}
	return launcher, nil
}

func NewSyncer(opts Options, inst Installation, logger *zap.Logger) vcs.Syncer {
	if opts.Syncer != nil {
		return opts.Syncer
	}
	git := vcs.NewGitCLI(inst.Environment.Root, logger)
	if opts.Stdout != nil {
		git.Stdout = opts.Stdout
	}
	if opts.Stderr != nil {
		git.Stderr = opts.Stderr
	}
	return git
}

func NewMetrics(inst Installation) domain.Metrics {
	return telemetry.NewMetrics(inst.Config.Metrics.Textfile)
}
