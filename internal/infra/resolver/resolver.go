// Package resolver maps a command name to its artifact in a family's command
// directory.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ngsutils/internal/domain"
)

const op = "resolve"

type candidate struct {
	ext  string
	kind domain.CommandKind
}

// Resolver tries the interpreted-script artifact first and the shell
// artifact second. The order is fixed.
type Resolver struct {
	logger     *zap.Logger
	candidates []candidate
}

func New(logger *zap.Logger, scriptExt, shellExt string) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scriptExt == "" {
		scriptExt = domain.DefaultScriptExt
	}
	if shellExt == "" {
		shellExt = domain.DefaultShellExt
	}
	return &Resolver{
		logger: logger.Named("resolver"),
		candidates: []candidate{
			{ext: scriptExt, kind: domain.KindScript},
			{ext: shellExt, kind: domain.KindShell},
		},
	}
}

// Resolve returns the artifact for name within family. Only exact names are
// matched; anything that could escape the command directory is unknown.
func (r *Resolver) Resolve(family domain.Family, name string) (domain.ResolvedCommand, error) {
	if !validName(name) {
		return domain.ResolvedCommand{}, domain.UnknownCommand(op, name)
	}

	for _, c := range r.candidates {
		path := filepath.Join(family.CommandDir, name+c.ext)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		r.logger.Debug("command resolved",
			zap.String("family", family.Name),
			zap.String("command", name),
			zap.String("path", path),
			zap.String("kind", string(c.kind)),
		)
		return domain.ResolvedCommand{
			Name:   name,
			Path:   path,
			Kind:   c.kind,
			Family: family.Name,
		}, nil
	}

	r.logger.Debug("command not found", zap.String("family", family.Name), zap.String("command", name))
	return domain.ResolvedCommand{}, domain.UnknownCommand(op, name)
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
