package query

import "strings"

// Column is one known field of a resource.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Catalog exposes the ordered columns of a resource. The compiler only trusts
// fields found here.
type Catalog interface {
	Columns() []Column
}

// StaticCatalog is a Catalog backed by a fixed column list.
type StaticCatalog []Column

func (c StaticCatalog) Columns() []Column { return c }

// findColumn returns the first catalog column named exactly name.
func findColumn(cat Catalog, name string) (Column, bool) {
	if cat == nil {
		return Column{}, false
	}
	for _, c := range cat.Columns() {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames lists the catalog identifiers in order.
func ColumnNames(cat Catalog) []string {
	if cat == nil {
		return nil
	}
	cols := cat.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// isTextType reports whether values for this column type are bound as strings.
func isTextType(t string) bool {
	switch t {
	case "string", "UUID", "date", "time", "datetime":
		return true
	}
	return false
}

// QuoteIdent double-quotes a SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
