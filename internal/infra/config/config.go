// Package config loads dispatcher settings from an optional YAML or TOML
// file layered over defaults and NGSUTILS_* environment variables.
package config

import (
	"path/filepath"

	"ngsutils/internal/domain"
)

type Config struct {
	// Root overrides the installation root derived from the executable path.
	Root     string
	Suffixes []string
	Families []FamilyConfig
	Runtime  RuntimeConfig
	Profile  ProfileConfig
	Update   UpdateConfig
	Version  VersionConfig
	Dispatch DispatchConfig
	Log      LogConfig
	Metrics  MetricsConfig

	// Source is the file the config was read from, empty for defaults only.
	Source string
}

// FamilyConfig paths are relative to the installation root unless absolute.
type FamilyConfig struct {
	Name       string
	Programs   []string
	CommandDir string
	Readme     string
	SelfUpdate bool
}

type RuntimeConfig struct {
	Interpreter string
	Venv        string
	ScriptExt   string
	ShellExt    string
	HelpFlag    string
}

type ProfileConfig struct {
	Output string
	Module string
}

type UpdateConfig struct {
	Strict bool
	Remote string
}

type VersionConfig struct {
	File   string
	Branch string
}

type DispatchConfig struct {
	Strategy string
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Textfile string
}

// Family returns the configured family with the given name.
func (c Config) Family(name string) (FamilyConfig, bool) {
	for _, fam := range c.Families {
		if fam.Name == name {
			return fam, true
		}
	}
	return FamilyConfig{}, false
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg, _ := normalizeConfig(rawConfig{})
	return cfg
}

func defaultFamily(name string, suffixes []string) FamilyConfig {
	dir := filepath.Join(domain.DefaultPackageDir, name)
	if name == domain.DefaultSelfUpdateFamily {
		dir = domain.DefaultPackageDir
	}
	return FamilyConfig{
		Name:       name,
		Programs:   programNames(name, suffixes),
		CommandDir: dir,
		Readme:     filepath.Join(dir, domain.DefaultReadme),
		SelfUpdate: name == domain.DefaultSelfUpdateFamily,
	}
}

func programNames(name string, suffixes []string) []string {
	out := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		out = append(out, name+suffix)
	}
	return out
}
