package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ngsutils/internal/domain"
)

// CommandLoader reads a family's command catalog. The catalog only feeds the
// usage listing; command resolution never consults it.
type CommandLoader struct {
	logger *zap.Logger
}

func NewCommandLoader(logger *zap.Logger) *CommandLoader {
	if logger == nil {
		return &CommandLoader{logger: zap.NewNop()}
	}
	return &CommandLoader{logger: logger.Named("catalog")}
}

type catalogFile struct {
	Categories []catalogCategory `yaml:"categories" toml:"categories"`
}

type catalogCategory struct {
	Name     string           `yaml:"name" toml:"name"`
	Commands []catalogCommand `yaml:"commands" toml:"commands"`
}

type catalogCommand struct {
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
}

// Load parses the catalog at path. The format follows the extension: .yaml
// and .yml, .toml, anything else is a plain-text README. A missing file is an
// empty catalog.
func (l *CommandLoader) Load(path string) ([]domain.CommandGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("command catalog not found", zap.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var groups []domain.CommandGroup
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		groups, err = parseStructured(data, yaml.Unmarshal)
	case ".toml":
		groups, err = parseStructured(data, toml.Unmarshal)
	default:
		groups, err = ParseReadme(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	l.logger.Debug("command catalog loaded", zap.String("path", path), zap.Int("categories", len(groups)))
	return groups, nil
}

func parseStructured(data []byte, unmarshal func([]byte, any) error) ([]domain.CommandGroup, error) {
	var file catalogFile
	if err := unmarshal(data, &file); err != nil {
		return nil, err
	}
	var b groupBuilder
	for i, category := range file.Categories {
		name := strings.TrimSpace(category.Name)
		if name == "" {
			return nil, fmt.Errorf("categories[%d]: name is required", i)
		}
		for j, cmd := range category.Commands {
			cmdName := strings.TrimSpace(cmd.Name)
			if cmdName == "" {
				return nil, fmt.Errorf("categories[%d].commands[%d]: name is required", i, j)
			}
			b.add(name, cmdName, strings.TrimSpace(cmd.Description))
		}
	}
	return b.groups, nil
}

// ParseReadme reads the plain-text catalog layout:
//
//	General:
//	    stats     - Summary statistics
//	    filter      Filter reads
//
// Unindented lines ending in ':' (or wrapped in brackets) start a category,
// indented lines are "name [-] description". Other unindented text and lines
// starting with '#' are skipped.
func ParseReadme(r io.Reader) ([]domain.CommandGroup, error) {
	var b groupBuilder
	category := domain.DefaultCategory

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indented := line != strings.TrimLeftFunc(line, unicode.IsSpace)
		if !indented {
			if name, ok := categoryHeader(trimmed); ok {
				category = name
			}
			continue
		}
		name, desc := splitEntry(trimmed)
		b.add(category, name, desc)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.groups, nil
}

func categoryHeader(line string) (string, bool) {
	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
		name := strings.TrimSpace(line[1 : len(line)-1])
		return name, name != ""
	}
	if strings.HasSuffix(line, ":") {
		name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
		return name, name != ""
	}
	return "", false
}

func splitEntry(line string) (string, string) {
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, ""
	}
	name := line[:idx]
	desc := strings.TrimSpace(line[idx:])
	desc = strings.TrimSpace(strings.TrimPrefix(desc, "-"))
	return name, desc
}

type groupBuilder struct {
	groups []domain.CommandGroup
	index  map[string]int
}

func (b *groupBuilder) add(category, name, description string) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	pos, ok := b.index[category]
	if !ok {
		pos = len(b.groups)
		b.index[category] = pos
		b.groups = append(b.groups, domain.CommandGroup{Category: category})
	}
	b.groups[pos].Commands = append(b.groups[pos].Commands, domain.CommandSpec{
		Name:        name,
		Description: description,
		Category:    category,
	})
}

// Specs flattens groups in display order.
func Specs(groups []domain.CommandGroup) []domain.CommandSpec {
	var out []domain.CommandSpec
	for _, group := range groups {
		out = append(out, group.Commands...)
	}
	return out
}
