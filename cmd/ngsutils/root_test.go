package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"ngsutils/internal/app"
	"ngsutils/internal/domain"
	"ngsutils/internal/infra/process"
)

func TestExitFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want exitError
	}{
		{name: "usage", err: app.ErrUsage, want: exitError{code: 1, silent: true}},
		{name: "child status", err: &process.ExitError{Program: "stats.py", Code: 7}, want: exitError{code: 7, silent: true}},
		{name: "unknown command", err: domain.UnknownCommand("resolve", "nope"), want: exitError{code: 1, message: "Unknown command 'nope'"}},
		{name: "plain error", err: errors.New("boom"), want: exitError{code: 1, message: "boom"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got exitError
			require.True(t, errors.As(exitFromError(tc.err), &got))
			require.Equal(t, tc.want, got)
		})
	}
	require.NoError(t, exitFromError(nil))
}

type install struct {
	root   string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newInstall(t *testing.T) *install {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture artifacts are shell scripts")
	}
	t.Setenv(domain.EnvConfig, "")
	t.Setenv(domain.EnvRoot, "")

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(base, "ngsutils")
	files := map[string]string{
		"bin/ngsutils":          "#!/bin/sh\n",
		"ngsutils.yaml":         "dispatch:\n  strategy: spawn\n",
		"ngsutils/bed/README":   "General:\n    stats - BED statistics\n",
		"ngsutils/bed/stats.sh": "#!/bin/sh\necho \"stats:$#:$*\"\nexit 5\n",
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "bin", "ngsutils"), filepath.Join(root, "bin", "bedtool")))
	return &install{root: root}
}

func (in *install) execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCommand(rootOptions{
		invokedPath: filepath.Join(in.root, "bin", "bedtool"),
		args:        args,
		environ:     []string{"PATH=/usr/bin:/bin"},
		stdin:       bytes.NewReader(nil),
		stdout:      &in.stdout,
		stderr:      &in.stderr,
	})
	return cmd.ExecuteContext(context.Background())
}

func TestRoot_ForwardsFlagsVerbatim(t *testing.T) {
	in := newInstall(t)

	err := in.execute(t, "stats", "--help", "-n", "3")
	var exitErr exitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, exitError{code: 5, silent: true}, exitErr)
	require.Equal(t, "stats:3:--help -n 3\n", in.stdout.String())
}

func TestRoot_NoArgumentsPrintsUsage(t *testing.T) {
	in := newInstall(t)

	err := in.execute(t)
	require.Equal(t, exitError{code: 1, silent: true}, err)
	require.Contains(t, in.stderr.String(), "Usage: bedtool COMMAND [options]\n")
	require.Contains(t, in.stderr.String(), "    stats  BED statistics\n")
}

func TestRoot_HelpVerbIsNotCobraHelp(t *testing.T) {
	in := newInstall(t)

	err := in.execute(t, "help", "stats")
	require.Equal(t, exitError{code: 5, silent: true}, err)
	require.Equal(t, "stats:1:-h\n", in.stdout.String())
}

func TestRoot_UnknownCommand(t *testing.T) {
	in := newInstall(t)

	err := in.execute(t, "nope")
	require.Equal(t, exitError{code: 1, message: "Unknown command 'nope'"}, err)
}

func TestNewRootCommand_NilArgsNeverReadProcessArgs(t *testing.T) {
	in := newInstall(t)
	cmd := newRootCommand(rootOptions{
		invokedPath: filepath.Join(in.root, "bin", "bedtool"),
		environ:     []string{"PATH=/usr/bin:/bin"},
		stdout:      &in.stdout,
		stderr:      &in.stderr,
	})

	err := cmd.ExecuteContext(context.Background())
	require.Equal(t, exitError{code: 1, silent: true}, err)
	require.NotContains(t, in.stderr.String(), "-test.")
	require.Contains(t, in.stderr.String(), "Usage: bedtool COMMAND [options]\n")
}
