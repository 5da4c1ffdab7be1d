package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/process"
)

func TestRun_PlainForwardsArgsAndActivatesRuntime(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	err := d.Run(context.Background(), []string{"stats", "-v", "in file.bam"})
	require.NoError(t, err)

	script := filepath.Join(f.root, "ngsutils", "bam", "stats.py")
	out := f.stdout.String()
	require.Contains(t, out, "python "+script+" -v in file.bam\n")
	require.Contains(t, out, "stats:2:-v in file.bam\n")
	require.Contains(t, out, "venv:"+filepath.Join(f.root, "env")+"\n")
	require.Contains(t, out, "pythonpath:"+f.root+"\n")
	require.Contains(t, out, "family:bam\n")
	require.Empty(t, f.stderr.String())
}

func TestRun_PlainMirrorsExitStatus(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamtool", nil)

	err := d.Run(context.Background(), []string{"fail"})
	code, ok := process.ExitCode(err)
	require.True(t, ok, "err %v", err)
	require.Equal(t, 4, code)
}

func TestRun_ShellArtifactRunsDirectly(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	require.NoError(t, d.Run(context.Background(), []string{"count", "a.bam", "regions.bed"}))
	require.Equal(t, "count:2:a.bam regions.bed\n", f.stdout.String())
}

func TestRun_ScriptWinsOverShell(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	require.NoError(t, d.Run(context.Background(), []string{"both"}))
	require.Contains(t, f.stdout.String(), "both-py\n")
	require.NotContains(t, f.stdout.String(), "both-sh")
}

func TestRun_UnknownCommand(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	err := d.Run(context.Background(), []string{"frobnicate", "--flag"})
	require.True(t, domain.IsCode(err, domain.CodeUnknownCommand))
	require.Equal(t, "Unknown command 'frobnicate'", domain.Message(err))
	require.Empty(t, f.stdout.String())
}

func TestRun_HelpPassesSingleHelpFlag(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	require.NoError(t, d.Run(context.Background(), []string{"help", "stats", "-x", "--verbose", "more"}))
	require.Contains(t, f.stdout.String(), "stats:1:-h\n")
}

func TestRun_HelpUsesConfiguredFlag(t *testing.T) {
	f := newFixture(t, "runtime:\n  helpFlag: --help\n")
	d := f.dispatcher(t, "bamutils", nil)

	require.NoError(t, d.Run(context.Background(), []string{"help", "count"}))
	require.Equal(t, "count:1:--help\n", f.stdout.String())
}

func TestRun_HelpWithoutCommandShowsUsage(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	err := d.Run(context.Background(), []string{"help"})
	require.ErrorIs(t, err, ErrUsage)
	require.True(t, strings.HasPrefix(f.stderr.String(), "Usage: bamutils COMMAND [options]\n"))
}

func TestRun_HelpUnknownCommand(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	err := d.Run(context.Background(), []string{"help", "nope"})
	require.Equal(t, "Unknown command 'nope'", domain.Message(err))
}

func TestRun_ProfileWrapsScript(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	require.NoError(t, d.Run(context.Background(), []string{"profile", "stats", "a.bam"}))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, "Profiling output: "+filepath.Join(cwd, "ngsutils.profile")+"\n", f.stderr.String())

	script := filepath.Join(f.root, "ngsutils", "bam", "stats.py")
	require.Contains(t, f.stdout.String(), "python -m cProfile -o ngsutils.profile "+script+" a.bam\n")
	require.Contains(t, f.stdout.String(), "stats:1:a.bam\n")
}

func TestRun_ProfileOutputIsConfigurable(t *testing.T) {
	f := newFixture(t, "")
	output := filepath.Join(f.root, "runs", "stats.prof")
	t.Setenv("NGSUTILS_PROFILE_OUTPUT", output)
	d := f.dispatcher(t, "bamutils", nil)

	require.NoError(t, d.Run(context.Background(), []string{"profile", "stats"}))
	require.Equal(t, "Profiling output: "+output+"\n", f.stderr.String())
	require.Contains(t, f.stdout.String(), "-o "+output+" ")
}

func TestRun_ProfileRejectsShellArtifacts(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	err := d.Run(context.Background(), []string{"profile", "count"})
	require.True(t, domain.IsCode(err, domain.CodeFailedPrecond))
	require.ErrorIs(t, err, domain.ErrProfileUnsupported)
	require.Empty(t, f.stdout.String())
}

func TestRun_ProfileWithoutCommandShowsUsage(t *testing.T) {
	f := newFixture(t, "")
	d := f.dispatcher(t, "bamutils", nil)

	require.ErrorIs(t, d.Run(context.Background(), []string{"profile"}), ErrUsage)
}

func TestRun_MissingInterpreter(t *testing.T) {
	f := newFixture(t, "runtime:\n  interpreter: no-such-python\n")
	d := f.dispatcher(t, "bamutils", nil)

	err := d.Run(context.Background(), []string{"stats"})
	require.ErrorIs(t, err, domain.ErrInterpreterMissing)
	require.True(t, domain.IsCode(err, domain.CodeFailedPrecond))
}

func TestRun_UpdateIsACommandOutsideSelfUpdateFamily(t *testing.T) {
	f := newFixture(t, "")
	syncer := &fakeSyncer{}
	d := f.dispatcher(t, "bamutils", syncer)

	err := d.Run(context.Background(), []string{"update"})
	require.Equal(t, "Unknown command 'update'", domain.Message(err))
	require.Empty(t, syncer.calls)
}

func TestDispatch_WritesMetricsTextfile(t *testing.T) {
	f := newFixture(t, "")
	textfile := filepath.Join(f.root, "metrics", "ngsutils.prom")
	t.Setenv("NGSUTILS_METRICS_TEXTFILE", textfile)
	d := f.dispatcher(t, "bamutils", nil)
	d.now = func() time.Time { return time.Unix(1700000000, 0) }

	_ = d.Run(context.Background(), []string{"fail"})

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	require.Contains(t, string(data), `ngsutils_dispatch_last_exit_code{command="fail",family="bam",mode="plain"} 4`)
}
