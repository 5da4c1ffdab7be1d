package app

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"ngsutils/internal/domain"
	"ngsutils/internal/infra/catalog"
	"ngsutils/internal/infra/config"
	"ngsutils/internal/infra/vcs"
)

// ErrUsage is returned after the usage text was printed. Showing usage is
// never a successful invocation.
var ErrUsage = errors.New("usage shown")

// Reporter prints the family's command catalog and the installation version.
type Reporter struct {
	program   string
	family    domain.Family
	root      string
	version   config.VersionConfig
	scriptExt string
	shellExt  string
	loader    *catalog.CommandLoader
	logger    *zap.Logger
}

func NewReporter(inst Installation, loader *catalog.CommandLoader, logger *zap.Logger) *Reporter {
	return &Reporter{
		program:   inst.Environment.Program,
		family:    inst.Environment.Family,
		root:      inst.Environment.Root,
		version:   inst.Config.Version,
		scriptExt: inst.Config.Runtime.ScriptExt,
		shellExt:  inst.Config.Runtime.ShellExt,
		loader:    loader,
		logger:    logger.Named("usage"),
	}
}

// Usage writes the usage text to w and returns ErrUsage.
func (r *Reporter) Usage(w io.Writer) error {
	groups, err := r.loader.Load(r.family.Readme)
	if err != nil {
		r.logger.Warn("command catalog unreadable", zap.String("path", r.family.Readme), zap.Error(err))
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "Usage: %s COMMAND [options]\n\n", r.program)
	b.WriteString("Available commands:\n")
	width := nameWidth(groups)
	for _, group := range groups {
		fmt.Fprintf(&b, "[%s]\n", group.Category)
		for _, cmd := range group.Commands {
			if cmd.Description == "" {
				fmt.Fprintf(&b, "    %s\n", cmd.Name)
				continue
			}
			fmt.Fprintf(&b, "    %-*s  %s\n", width, cmd.Name, cmd.Description)
		}
	}
	fmt.Fprintf(&b, "\nRun '%s help COMMAND' for more information on a specific command.\n", r.program)
	fmt.Fprintf(&b, "Run '%s profile COMMAND [options]' to profile a %s command; %s commands cannot be profiled.\n",
		r.program, r.scriptExt, r.shellExt)
	if r.family.SelfUpdate {
		fmt.Fprintf(&b, "Run '%s update [branch]' to update the installation.\n", r.program)
	}
	fmt.Fprintf(&b, "\n%s %s\n", domain.ProductName, r.Version())

	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("write usage: %w", err)
	}
	return ErrUsage
}

// Version combines the VERSION label with the tip of the version branch.
// Missing pieces shorten the result instead of failing.
func (r *Reporter) Version() domain.VersionInfo {
	info := domain.VersionInfo{Label: r.label()}
	rev, err := vcs.LatestRevision(r.root, r.version.Branch)
	if err != nil {
		r.logger.Debug("revision metadata unavailable", zap.String("root", r.root), zap.Error(err))
		return info
	}
	info.Revision = rev.Short
	info.Timestamp = rev.Time
	return info
}

func (r *Reporter) label() string {
	path := r.version.File
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	label := ""
	if path != "" {
		label = readFirstLine(path)
	}
	if label == "" {
		label = Version
	}
	if label == "" {
		r.logger.Debug("version label unavailable", zap.String("path", path))
		return domain.UnknownVersionLabel
	}
	return canonicalLabel(label)
}

func readFirstLine(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// canonicalLabel normalizes semantic versions ("1.2" -> "1.2.0") and keeps
// any other label as written.
func canonicalLabel(label string) string {
	prefixed := label
	if !strings.HasPrefix(prefixed, "v") {
		prefixed = "v" + prefixed
	}
	if !semver.IsValid(prefixed) {
		return label
	}
	canonical := semver.Canonical(prefixed)
	if strings.HasPrefix(label, "v") {
		return canonical
	}
	return strings.TrimPrefix(canonical, "v")
}

func nameWidth(groups []domain.CommandGroup) int {
	width := 0
	for _, spec := range catalog.Specs(groups) {
		if len(spec.Name) > width {
			width = len(spec.Name)
		}
	}
	return width
}
