package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Разрешённые ключи для объектов
var allowedResourceKeys = map[string]bool{
	"table":   true,
	"route":   true,
	"columns": true,
}

var allowedColumnKeys = map[string]bool{
	"name": true,
	"type": true,
}

// Разрешённые значения для type в колонках
var allowedColumnTypeValues = map[string]bool{
	"int":      true,
	"string":   true,
	"bool":     true,
	"float":    true,
	"time":     true,
	"datetime": true,
	"date":     true,
	"UUID":     true,
}

func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "resource"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "resource":
			allowedKeys = allowedResourceKeys
		case "column":
			allowedKeys = allowedColumnKeys
		default:
			allowedKeys = nil // свободная форма
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s", key, context)
			}

			if context == "column" && key == "type" && !allowedColumnTypeValues[valNode.Value] {
				return fmt.Errorf("unknown type value '%s' in column", valNode.Value)
			}

			nextContext := context
			if context == "resource" && key == "columns" {
				nextContext = "columns-seq"
			} else if context == "column" {
				nextContext = "column-value"
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		if context == "columns-seq" {
			for _, item := range node.Content {
				if item.Kind != yaml.MappingNode {
					return fmt.Errorf("column entry must be a mapping, got %q", item.Value)
				}
				if err := validateYAMLNode(item, "column"); err != nil {
					return err
				}
			}
		} else {
			for _, item := range node.Content {
				if err := validateYAMLNode(item, context); err != nil {
					return err
				}
			}
		}

	case yaml.ScalarNode:
		// скаляры проверяются при разборе MappingNode
	}

	return nil
}
