package envutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"ngsutils/internal/domain"
)

const (
	pathEnv       = "PATH"
	pythonPathEnv = "PYTHONPATH"
	pythonHomeEnv = "PYTHONHOME"
	virtualEnv    = "VIRTUAL_ENV"
)

// RuntimeOptions describes the runtime a dispatched command runs under.
type RuntimeOptions struct {
	Root         string
	Venv         string
	Family       string
	InvocationID string
}

// BuildChildEnv returns a new environment for a dispatched command. base is
// never modified. The virtualenv under Root is activated when it exists and
// Root is prepended to PYTHONPATH.
func BuildChildEnv(base []string, opts RuntimeOptions) []string {
	env := append([]string(nil), base...)

	if binDir, ok := venvBinDir(opts.Root, opts.Venv); ok {
		env = setEnvValue(env, virtualEnv, filepath.Dir(binDir))
		env = setEnvValue(env, pathEnv, mergePATH(binDir, envVarValue(env, pathEnv)))
		env = unsetEnvValue(env, pythonHomeEnv)
	}
	if opts.Root != "" {
		env = setEnvValue(env, pythonPathEnv, mergePATH(opts.Root, envVarValue(env, pythonPathEnv)))
		env = setEnvValue(env, domain.EnvRoot, opts.Root)
	}
	if opts.Family != "" {
		env = setEnvValue(env, domain.EnvFamily, opts.Family)
	}
	if opts.InvocationID != "" {
		env = setEnvValue(env, domain.EnvInvocationID, opts.InvocationID)
	}
	return env
}

func venvBinDir(root, venv string) (string, bool) {
	if root == "" || strings.TrimSpace(venv) == "" {
		return "", false
	}
	dir := venv
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, venv)
	}
	bin := "bin"
	if runtime.GOOS == "windows" {
		bin = "Scripts"
	}
	binDir := filepath.Join(dir, bin)
	info, err := os.Stat(binDir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return binDir, true
}

// LookPath searches the PATH of env, not of the current process.
func LookPath(env []string, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", domain.ErrInterpreterMissing)
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", domain.ErrInterpreterMissing, name)
	}
	for _, dir := range filepath.SplitList(envVarValue(env, pathEnv)) {
		if dir == "" {
			dir = "."
		}
		for _, candidate := range candidates(filepath.Join(dir, name)) {
			if isExecutable(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s not found in PATH", domain.ErrInterpreterMissing, name)
}

func candidates(path string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(path) != "" {
		return []string{path}
	}
	return []string{path + ".exe", path + ".bat", path}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// Value returns the last value of key in env.
func Value(env []string, key string) string {
	return envVarValue(env, key)
}

func envVarValue(env []string, key string) string {
	if key == "" {
		return ""
	}
	prefix := key + "="
	var value string
	for _, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			value = strings.TrimPrefix(entry, prefix)
		}
	}
	return value
}

func setEnvValue(env []string, key, value string) []string {
	if key == "" {
		return env
	}
	out := unsetEnvValue(env, key)
	return append(out, key+"="+value)
}

func unsetEnvValue(env []string, key string) []string {
	prefix := key + "="
	out := make([]string, 0, len(env)+1)
	for _, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func mergePATH(primary, fallback string) string {
	separator := string(os.PathListSeparator)
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)

	appendPath := func(path string) {
		if strings.TrimSpace(path) == "" {
			return
		}
		for _, entry := range strings.Split(path, separator) {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if _, exists := seen[entry]; exists {
				continue
			}
			seen[entry] = struct{}{}
			out = append(out, entry)
		}
	}

	appendPath(primary)
	appendPath(fallback)

	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, separator)
}
