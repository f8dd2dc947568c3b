package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeResource(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestInitRegistry_LoadsResources(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "users.yml", `
table: users
columns:
  - name: id
    type: int
  - name: first_name
    type: string
`)
	writeResource(t, dir, "orders.yaml", `
table: public.orders
route: purchases
`)
	t.Cleanup(ResetRegistry)

	if err := InitRegistry(dir); err != nil {
		t.Fatalf("InitRegistry: %v", err)
	}
	routes := Routes()
	if strings.Join(routes, ",") != "purchases,users" {
		t.Fatalf("routes mismatch: %v", routes)
	}

	users, err := Lookup("users")
	if err != nil {
		t.Fatalf("Lookup users: %v", err)
	}
	if !users.Declared() || len(users.Columns) != 2 || users.Columns[1].Name != "first_name" {
		t.Fatalf("users columns mismatch: %+v", users.Columns)
	}

	orders, err := Lookup("purchases")
	if err != nil {
		t.Fatalf("Lookup purchases: %v", err)
	}
	if orders.Name != "orders" || orders.Table != "public.orders" || orders.Declared() {
		t.Fatalf("orders mismatch: %+v", orders)
	}

	if _, err := Lookup("orders"); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestInitRegistry_DuplicateRoute(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "a.yml", "table: a\nroute: same\n")
	writeResource(t, dir, "b.yml", "table: b\nroute: same\n")
	t.Cleanup(ResetRegistry)

	err := InitRegistry(dir)
	if err == nil || !strings.Contains(err.Error(), `route "same" already used`) {
		t.Fatalf("expected duplicate route error, got %v", err)
	}
}

func TestParseResource_RejectsUnknownKeys(t *testing.T) {
	cases := map[string]string{
		"resource key": "table: users\npresets: {}\n",
		"column key":   "table: users\ncolumns:\n  - name: id\n    alias: x\n",
		"column type":  "table: users\ncolumns:\n  - name: id\n    type: bigint\n",
		"column shape": "table: users\ncolumns:\n  - id\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseResource("users", []byte(body)); err == nil {
				t.Fatalf("expected validation error for %q", body)
			}
		})
	}
}

func TestParseResource_Empty(t *testing.T) {
	if _, err := ParseResource("users", []byte("")); err == nil {
		t.Fatalf("expected error for empty YAML")
	}
}

func TestValidateResource(t *testing.T) {
	cases := []struct {
		name    string
		res     *Resource
		wantErr string
	}{
		{"ok introspected", &Resource{Name: "users", Table: "users"}, ""},
		{"ok schema", &Resource{Name: "users", Table: "app.users", Route: "people"}, ""},
		{"bad table", &Resource{Name: "users", Table: "users; drop"}, "invalid table"},
		{"bad route", &Resource{Name: "users", Table: "users", Route: "a/b"}, "invalid route"},
		{"no id", &Resource{Name: "users", Table: "users", Columns: colList("name")}, `must include "id"`},
		{"duplicate", &Resource{Name: "users", Table: "users", Columns: colList("id", "id")}, "duplicate column"},
		{"empty name", &Resource{Name: "users", Table: "users", Columns: colList("id", "")}, "has no name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateResource(tc.res)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
