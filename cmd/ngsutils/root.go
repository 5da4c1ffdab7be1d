package main

import (
	"io"

	"github.com/spf13/cobra"

	"ngsutils/internal/app"
	"ngsutils/internal/infra/environment"
	"ngsutils/internal/infra/telemetry"
	"ngsutils/internal/infra/vcs"
)

type rootOptions struct {
	invokedPath string
	args        []string
	environ     []string
	logging     telemetry.Logging

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	syncer vcs.Syncer
}

// newRootCommand builds the single dispatch command. Flag parsing is off so
// every token after the command name reaches the command untouched; the
// reserved verbs are recognized by the dispatcher itself.
func newRootCommand(opts rootOptions) *cobra.Command {
	program := environment.ProgramName(opts.invokedPath)
	root := &cobra.Command{
		Use:                program + " COMMAND [options]",
		Short:              "Dispatcher for the ngsutils tool families",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dispatcher, err := app.InitializeDispatcher(ctx, app.Options{
				InvokedPath: opts.invokedPath,
				Environ:     opts.environ,
				Stdin:       opts.stdin,
				Stdout:      opts.stdout,
				Stderr:      opts.stderr,
				Logging:     opts.logging,
				Syncer:      opts.syncer,
			})
			if err != nil {
				return exitFromError(err)
			}
			return exitFromError(dispatcher.Run(ctx, args))
		},
	}
	// A nil slice would make cobra fall back to os.Args.
	root.SetArgs(append([]string{}, opts.args...))
	if opts.stdout != nil {
		root.SetOut(opts.stdout)
	}
	if opts.stderr != nil {
		root.SetErr(opts.stderr)
	}
	return root
}
