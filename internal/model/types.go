package model

import "CursorAPI/internal/query"

// Resource описывает листаемую сущность в конфигурации
type Resource struct {
	Name    string         `yaml:"-"`       // logical name (file name without extension)
	Table   string         `yaml:"table"`   // SQL table, optionally schema-qualified
	Route   string         `yaml:"route"`   // URL segment under /api/, defaults to Name
	Columns []query.Column `yaml:"columns"` // optional; introspected from the backend when empty
}

// Path returns the URL segment the resource is served under.
func (r *Resource) Path() string {
	if r.Route != "" {
		return r.Route
	}
	return r.Name
}

// Declared reports whether the catalog comes from the YAML file.
func (r *Resource) Declared() bool {
	return len(r.Columns) > 0
}
