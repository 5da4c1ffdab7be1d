package environment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/config"
)

type install struct {
	root   string
	binary string
}

func newInstall(t *testing.T, families ...string) install {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	root := filepath.Join(base, "opt", "ngsutils")
	binary := filepath.Join(root, "bin", "ngsutils")
	require.NoError(t, os.MkdirAll(filepath.Dir(binary), 0o755))
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))
	for _, fam := range families {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "ngsutils", fam), 0o755))
	}
	return install{root: root, binary: binary}
}

func (in install) link(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.Symlink(in.binary, path))
	return path
}

func TestResolve_FollowsSymlinkToRealRoot(t *testing.T) {
	in := newInstall(t, "bed", "bam")
	elsewhere := filepath.Join(filepath.Dir(in.root), "usr", "local", "bin")
	invoked := in.link(t, elsewhere, "bedtool")

	env, err := NewResolver(zap.NewNop()).Resolve(invoked, config.Default())
	require.NoError(t, err)

	require.Equal(t, "bedtool", env.Program)
	require.Equal(t, in.root, env.Root)
	require.Equal(t, in.binary, env.Executable)
	require.Equal(t, "bed", env.Family.Name)
	require.Equal(t, filepath.Join(in.root, "ngsutils", "bed"), env.Family.CommandDir)
	require.Equal(t, filepath.Join(in.root, "ngsutils", "bed", "README"), env.Family.Readme)
	require.False(t, env.Family.SelfUpdate)
}

func TestResolve_LegacyUtilsSuffix(t *testing.T) {
	in := newInstall(t, "bam")
	invoked := in.link(t, filepath.Join(in.root, "bin"), "bamutils")

	env, err := NewResolver(zap.NewNop()).Resolve(invoked, config.Default())
	require.NoError(t, err)
	require.Equal(t, "bam", env.Family.Name)
}

func TestResolve_BareNameUsesPATH(t *testing.T) {
	in := newInstall(t, "bam")
	dir := filepath.Join(filepath.Dir(in.root), "shims")
	in.link(t, dir, "bamtool")

	resolver := NewResolver(zap.NewNop())
	resolver.lookPath = func(name string) (string, error) {
		require.Equal(t, "bamtool", name)
		return filepath.Join(dir, name), nil
	}

	env, err := resolver.Resolve("bamtool", config.Default())
	require.NoError(t, err)
	require.Equal(t, in.root, env.Root)
	require.Equal(t, "bam", env.Family.Name)
}

func TestResolve_FallsBackToExecutable(t *testing.T) {
	in := newInstall(t, "bed")

	resolver := NewResolver(zap.NewNop())
	resolver.lookPath = func(string) (string, error) { return "", errors.New("not on PATH") }
	resolver.executable = func() (string, error) { return in.binary, nil }

	env, err := resolver.Resolve("bedutils", config.Default())
	require.NoError(t, err)
	require.Equal(t, in.root, env.Root)
}

func TestResolve_SelfUpdateFamilyUsesPackageRoot(t *testing.T) {
	in := newInstall(t)
	require.NoError(t, os.MkdirAll(filepath.Join(in.root, "ngsutils"), 0o755))
	invoked := in.link(t, filepath.Join(filepath.Dir(in.root), "links"), "ngsutils")

	env, err := NewResolver(zap.NewNop()).Resolve(invoked, config.Default())
	require.NoError(t, err)
	require.Equal(t, "ngs", env.Family.Name)
	require.True(t, env.Family.SelfUpdate)
	require.Equal(t, filepath.Join(in.root, "ngsutils"), env.Family.CommandDir)
}

func TestResolve_UnknownProgram(t *testing.T) {
	in := newInstall(t, "bed")
	invoked := in.link(t, filepath.Join(in.root, "bin"), "vcfmangler")

	_, err := NewResolver(zap.NewNop()).Resolve(invoked, config.Default())
	require.Error(t, err)
	require.True(t, domain.IsCode(err, domain.CodeUnknownFamily))
	require.Contains(t, err.Error(), "vcfmangler")
}

func TestResolve_MissingCommandDirectory(t *testing.T) {
	in := newInstall(t, "bed")
	invoked := in.link(t, filepath.Join(in.root, "bin"), "gtfutils")

	_, err := NewResolver(zap.NewNop()).Resolve(invoked, config.Default())
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrUnknownFamily)
	require.Contains(t, err.Error(), filepath.Join(in.root, "ngsutils", "gtf"))
}

func TestResolve_RootOverride(t *testing.T) {
	in := newInstall(t, "bed")
	other := newInstall(t, "bed")
	invoked := in.link(t, filepath.Join(in.root, "bin"), "bedtool")

	cfg := config.Default()
	cfg.Root = other.root

	env, err := NewResolver(zap.NewNop()).Resolve(invoked, cfg)
	require.NoError(t, err)
	require.Equal(t, other.root, env.Root)
	require.Equal(t, filepath.Join(other.root, "ngsutils", "bed"), env.Family.CommandDir)
}

func TestProgramName(t *testing.T) {
	require.Equal(t, "bedtool", ProgramName("/usr/local/bin/bedtool"))
	require.Equal(t, "bamutils", ProgramName("bamutils.exe"))
}
