package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// expandConfigEnv expands ${VAR} references in every string scalar of a YAML
// document and reports the variables that were not set.
func expandConfigEnv(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}
	if root.Kind == 0 {
		return "", nil, nil
	}

	missing := make(map[string]struct{})
	expandNode(&root, missing)

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(expanded), missingList(missing), nil
}

func expandNode(node *yaml.Node, missing map[string]struct{}) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			expandNode(child, missing)
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			expandNode(node.Content[i], missing)
		}
	case yaml.ScalarNode:
		if !strings.Contains(node.Value, "$") {
			return
		}
		// Expanded values stay strings; viper's weak decoding converts them
		// into the target field type.
		node.Value = os.Expand(node.Value, func(key string) string {
			if val, ok := os.LookupEnv(key); ok {
				return val
			}
			missing[key] = struct{}{}
			return ""
		})
		node.Tag = "!!str"
	}
}

func missingList(missing map[string]struct{}) []string {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
