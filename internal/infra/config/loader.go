package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ngsutils/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newConfigViper(configType string) *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvPrefix(domain.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("suffixes", domain.DefaultSuffixes)
	v.SetDefault("runtime.interpreter", domain.DefaultInterpreter)
	v.SetDefault("runtime.venv", domain.DefaultVenvDir)
	v.SetDefault("runtime.scriptExt", domain.DefaultScriptExt)
	v.SetDefault("runtime.shellExt", domain.DefaultShellExt)
	v.SetDefault("runtime.helpFlag", domain.DefaultHelpFlag)
	v.SetDefault("profile.output", domain.DefaultProfileOutput)
	v.SetDefault("profile.module", domain.DefaultProfileModule)
	v.SetDefault("update.strict", false)
	v.SetDefault("update.remote", domain.DefaultUpdateRemote)
	v.SetDefault("version.file", domain.DefaultVersionFile)
	v.SetDefault("version.branch", domain.DefaultVersionBranch)
	v.SetDefault("dispatch.strategy", defaultStrategy())
	v.SetDefault("log.level", domain.DefaultLogLevel)
	v.SetDefault("metrics.textfile", "")
}

func defaultStrategy() string {
	if runtime.GOOS == "windows" {
		return domain.StrategySpawn
	}
	return domain.StrategyExec
}

type rawConfig struct {
	Root     string            `mapstructure:"root"`
	Suffixes []string          `mapstructure:"suffixes"`
	Families []rawFamilyConfig `mapstructure:"families"`
	Runtime  rawRuntimeConfig  `mapstructure:"runtime"`
	Profile  rawProfileConfig  `mapstructure:"profile"`
	Update   rawUpdateConfig   `mapstructure:"update"`
	Version  rawVersionConfig  `mapstructure:"version"`
	Dispatch rawDispatchConfig `mapstructure:"dispatch"`
	Log      rawLogConfig      `mapstructure:"log"`
	Metrics  rawMetricsConfig  `mapstructure:"metrics"`
}

type rawFamilyConfig struct {
	Name       string   `mapstructure:"name"`
	Programs   []string `mapstructure:"programs"`
	CommandDir string   `mapstructure:"commandDir"`
	Readme     string   `mapstructure:"readme"`
	SelfUpdate *bool    `mapstructure:"selfUpdate"`
}

type rawRuntimeConfig struct {
	Interpreter string `mapstructure:"interpreter"`
	Venv        string `mapstructure:"venv"`
	ScriptExt   string `mapstructure:"scriptExt"`
	ShellExt    string `mapstructure:"shellExt"`
	HelpFlag    string `mapstructure:"helpFlag"`
}

type rawProfileConfig struct {
	Output string `mapstructure:"output"`
	Module string `mapstructure:"module"`
}

type rawUpdateConfig struct {
	Strict bool   `mapstructure:"strict"`
	Remote string `mapstructure:"remote"`
}

type rawVersionConfig struct {
	File   string `mapstructure:"file"`
	Branch string `mapstructure:"branch"`
}

type rawDispatchConfig struct {
	Strategy string `mapstructure:"strategy"`
}

type rawLogConfig struct {
	Level string `mapstructure:"level"`
}

type rawMetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Load reads the config file named by NGSUTILS_CONFIG, or root/ngsutils.yaml
// when that exists. A missing default file is not an error.
func (l *Loader) Load(ctx context.Context, root string) (Config, error) {
	path, explicit := configPath(root)
	if path == "" {
		return l.decode(ctx, nil, "yaml", "")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return l.decode(ctx, nil, "yaml", "")
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	configType := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		configType = "toml"
	} else {
		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return Config{}, err
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
		}
		data = []byte(expanded)
	}
	return l.decode(ctx, data, configType, path)
}

func (l *Loader) decode(ctx context.Context, data []byte, configType, source string) (Config, error) {
	v := newConfigViper(configType)
	if len(data) > 0 {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg, errs := normalizeConfig(raw)
	if len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}
	cfg.Source = source
	if source != "" {
		l.logger.Debug("configuration loaded", zap.String("path", source), zap.Int("families", len(cfg.Families)))
	}
	return cfg, ctx.Err()
}

func configPath(root string) (string, bool) {
	if path := strings.TrimSpace(os.Getenv(domain.EnvConfig)); path != "" {
		return path, true
	}
	if root == "" {
		return "", false
	}
	return filepath.Join(root, domain.DefaultConfigFile), false
}

func normalizeConfig(raw rawConfig) (Config, []string) {
	var errs []string

	suffixes := trimAll(raw.Suffixes)
	if len(suffixes) == 0 {
		suffixes = append([]string(nil), domain.DefaultSuffixes...)
	}

	cfg := Config{
		Root:     strings.TrimSpace(raw.Root),
		Suffixes: suffixes,
		Runtime: RuntimeConfig{
			Interpreter: orDefault(raw.Runtime.Interpreter, domain.DefaultInterpreter),
			Venv:        orDefault(raw.Runtime.Venv, domain.DefaultVenvDir),
			ScriptExt:   normalizeExt(orDefault(raw.Runtime.ScriptExt, domain.DefaultScriptExt)),
			ShellExt:    normalizeExt(orDefault(raw.Runtime.ShellExt, domain.DefaultShellExt)),
			HelpFlag:    orDefault(raw.Runtime.HelpFlag, domain.DefaultHelpFlag),
		},
		Profile: ProfileConfig{
			Output: orDefault(raw.Profile.Output, domain.DefaultProfileOutput),
			Module: orDefault(raw.Profile.Module, domain.DefaultProfileModule),
		},
		Update: UpdateConfig{
			Strict: raw.Update.Strict,
			Remote: orDefault(raw.Update.Remote, domain.DefaultUpdateRemote),
		},
		Version: VersionConfig{
			File:   orDefault(raw.Version.File, domain.DefaultVersionFile),
			Branch: orDefault(raw.Version.Branch, domain.DefaultVersionBranch),
		},
		Dispatch: DispatchConfig{Strategy: strings.ToLower(orDefault(raw.Dispatch.Strategy, defaultStrategy()))},
		Log:      LogConfig{Level: strings.ToLower(orDefault(raw.Log.Level, domain.DefaultLogLevel))},
		Metrics:  MetricsConfig{Textfile: strings.TrimSpace(raw.Metrics.Textfile)},
	}

	if cfg.Runtime.ScriptExt == cfg.Runtime.ShellExt {
		errs = append(errs, fmt.Sprintf("runtime.scriptExt and runtime.shellExt must differ (both %q)", cfg.Runtime.ScriptExt))
	}
	switch cfg.Dispatch.Strategy {
	case domain.StrategyExec, domain.StrategySpawn:
	default:
		errs = append(errs, fmt.Sprintf("dispatch.strategy must be %q or %q, got %q", domain.StrategyExec, domain.StrategySpawn, cfg.Dispatch.Strategy))
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}

	families, famErrs := normalizeFamilies(raw.Families, suffixes)
	cfg.Families = families
	errs = append(errs, famErrs...)

	return cfg, errs
}

// normalizeFamilies overlays configured families on the defaults by name.
func normalizeFamilies(raw []rawFamilyConfig, suffixes []string) ([]FamilyConfig, []string) {
	var errs []string

	families := make([]FamilyConfig, 0, len(domain.DefaultFamilies)+len(raw))
	index := make(map[string]int, len(domain.DefaultFamilies))
	for _, name := range domain.DefaultFamilies {
		index[name] = len(families)
		families = append(families, defaultFamily(name, suffixes))
	}

	for i, item := range raw {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("families[%d]: name is required", i))
			continue
		}
		fam := defaultFamily(name, suffixes)
		fam.SelfUpdate = false
		if pos, ok := index[name]; ok {
			fam = families[pos]
		}
		if programs := trimAll(item.Programs); len(programs) > 0 {
			fam.Programs = programs
		}
		if dir := strings.TrimSpace(item.CommandDir); dir != "" {
			fam.CommandDir = dir
			fam.Readme = filepath.Join(dir, domain.DefaultReadme)
		}
		if readme := strings.TrimSpace(item.Readme); readme != "" {
			fam.Readme = readme
		}
		if item.SelfUpdate != nil {
			fam.SelfUpdate = *item.SelfUpdate
		}
		if pos, ok := index[name]; ok {
			families[pos] = fam
			continue
		}
		index[name] = len(families)
		families = append(families, fam)
	}

	owners := make(map[string]string)
	selfUpdate := ""
	for _, fam := range families {
		for _, program := range fam.Programs {
			if owner, ok := owners[program]; ok && owner != fam.Name {
				errs = append(errs, fmt.Sprintf("program %q is claimed by families %q and %q", program, owner, fam.Name))
				continue
			}
			owners[program] = fam.Name
		}
		if fam.SelfUpdate {
			if selfUpdate != "" {
				errs = append(errs, fmt.Sprintf("only one family may enable selfUpdate (%q and %q)", selfUpdate, fam.Name))
			}
			selfUpdate = fam.Name
		}
	}

	return families, errs
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func normalizeExt(ext string) string {
	if strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
