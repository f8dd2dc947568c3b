package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"CursorAPI/internal/logger"

	"gopkg.in/yaml.v3"
)

func LoadResourcesFromDir(dir string) error {
	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res, err := ParseResource(name, data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := Registry[res.Path()]; ok {
			return fmt.Errorf("%s: route %q already used by resource %q", path, res.Path(), prev.Name)
		}
		Registry[res.Path()] = res
		logger.Info("resource_loaded", map[string]any{
			"resource": name,
			"table":    res.Table,
			"route":    res.Path(),
			"columns":  len(res.Columns),
		})
	}
	return nil
}

// ParseResource validates the YAML structure and decodes one resource definition.
func ParseResource(name string, data []byte) (*Resource, error) {
	// 1. yaml.Node first, for structural validation
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty YAML")
	}
	if err := validateYAMLNode(root.Content[0], "resource"); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	// 2. decode
	var res Resource
	if err := root.Decode(&res); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	res.Name = name
	return &res, nil
}
