package model

import (
	"fmt"
	"regexp"

	"CursorAPI/internal/query"
)

// tablePattern accepts "table" or "schema.table" made of SQL identifier characters.
var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

var routePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateRegistry проверяет все ресурсы:
// 1) таблица и маршрут допустимы,
// 2) объявленные колонки уникальны и содержат идентификатор.
func ValidateRegistry() error {
	for _, route := range Routes() {
		if err := ValidateResource(Registry[route]); err != nil {
			return err
		}
	}
	return nil
}

func ValidateResource(r *Resource) error {
	if r == nil {
		return fmt.Errorf("resource is nil")
	}
	if !tablePattern.MatchString(r.Table) {
		return fmt.Errorf("resource %q: invalid table %q", r.Name, r.Table)
	}
	if !routePattern.MatchString(r.Path()) {
		return fmt.Errorf("resource %q: invalid route %q", r.Name, r.Path())
	}
	if !r.Declared() {
		return nil
	}

	seen := make(map[string]struct{}, len(r.Columns))
	for i, c := range r.Columns {
		if c.Name == "" {
			return fmt.Errorf("resource %q: column #%d has no name", r.Name, i)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("resource %q: duplicate column %q", r.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	if _, ok := seen[query.IDField]; !ok {
		return fmt.Errorf("resource %q: columns must include %q", r.Name, query.IDField)
	}
	return nil
}
