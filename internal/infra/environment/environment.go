// Package environment works out where the suite is installed and which tool
// family the dispatcher was invoked as.
package environment

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/config"
)

const op = "environment"

// Environment is resolved once per process.
type Environment struct {
	// Program is the base name the dispatcher was invoked as.
	Program string
	// Executable is the symlink-free path of the running binary.
	Executable string
	// Root is the symlink-free installation root.
	Root   string
	Family domain.Family
}

type Resolver struct {
	logger     *zap.Logger
	lookPath   func(string) (string, error)
	executable func() (string, error)
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:     logger.Named("environment"),
		lookPath:   exec.LookPath,
		executable: os.Executable,
	}
}

// ProgramName returns the invocation name used for family lookup.
func ProgramName(invokedPath string) string {
	name := filepath.Base(strings.TrimSpace(invokedPath))
	return strings.TrimSuffix(name, ".exe")
}

// Root derives the installation root without consulting the family table.
// The binary lives in <root>/bin, so the root is two levels above the real
// executable. An explicit override wins.
func (r *Resolver) Root(invokedPath, override string) (root string, executable string, err error) {
	if override = strings.TrimSpace(override); override != "" {
		root, err = realPath(override)
		if err != nil {
			return "", "", domain.E(domain.CodeFailedPrecond, op, fmt.Sprintf("installation root %s", override), err)
		}
		executable, _ = r.realExecutable(invokedPath)
		return root, executable, nil
	}

	executable, err = r.realExecutable(invokedPath)
	if err != nil {
		return "", "", domain.E(domain.CodeInternal, op, "locate dispatcher executable", err)
	}
	return filepath.Dir(filepath.Dir(executable)), executable, nil
}

func (r *Resolver) realExecutable(invokedPath string) (string, error) {
	candidate := strings.TrimSpace(invokedPath)
	if candidate != "" && filepath.Base(candidate) == candidate {
		if found, err := r.lookPath(candidate); err == nil {
			candidate = found
		} else {
			candidate = ""
		}
	}
	if candidate == "" {
		exe, err := r.executable()
		if err != nil {
			return "", err
		}
		candidate = exe
	}
	return realPath(candidate)
}

// Resolve computes the installation root and the active family. A program
// name claimed by no family, or a family without a command directory, is an
// UnknownFamily error.
func (r *Resolver) Resolve(invokedPath string, cfg config.Config) (Environment, error) {
	root, executable, err := r.Root(invokedPath, cfg.Root)
	if err != nil {
		return Environment{}, err
	}
	return r.resolveFamily(ProgramName(invokedPath), executable, root, cfg)
}

func (r *Resolver) resolveFamily(program, executable, root string, cfg config.Config) (Environment, error) {
	families := ProgramFamilies(cfg)
	famCfg, ok := families[program]
	if !ok {
		return Environment{}, domain.UnknownFamily(op, program, "no family claims this program name")
	}

	family := domain.Family{
		Name:       famCfg.Name,
		Programs:   append([]string(nil), famCfg.Programs...),
		CommandDir: underRoot(root, famCfg.CommandDir),
		Readme:     underRoot(root, famCfg.Readme),
		SelfUpdate: famCfg.SelfUpdate,
	}

	info, err := os.Stat(family.CommandDir)
	if err != nil || !info.IsDir() {
		return Environment{}, domain.UnknownFamily(op, program, fmt.Sprintf("command directory %s not found", family.CommandDir))
	}

	r.logger.Debug("environment resolved",
		zap.String("program", program),
		zap.String("family", family.Name),
		zap.String("root", root),
		zap.String("commandDir", family.CommandDir),
	)
	return Environment{
		Program:    program,
		Executable: executable,
		Root:       root,
		Family:     family,
	}, nil
}

// ProgramFamilies is the explicit program name to family mapping.
func ProgramFamilies(cfg config.Config) map[string]config.FamilyConfig {
	out := make(map[string]config.FamilyConfig)
	for _, fam := range cfg.Families {
		for _, program := range fam.Programs {
			out[program] = fam
		}
	}
	return out
}

func underRoot(root, path string) string {
	if path == "" {
		return root
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func realPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
