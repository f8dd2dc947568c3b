package model

import (
	"errors"
	"fmt"
	"sort"
)

var ErrResourceNotFound = errors.New("resource not found")

// Registry maps a resource route to its definition.
var Registry = map[string]*Resource{}

func InitRegistry(dir string) error {
	ResetRegistry()
	if err := LoadResourcesFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	if err := ValidateRegistry(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	logRegistryStats()
	return nil
}

func ResetRegistry() {
	Registry = map[string]*Resource{}
}

// Lookup returns the resource served under route.
func Lookup(route string) (*Resource, error) {
	if r, ok := Registry[route]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, route)
}

// Routes lists registered routes in a stable order.
func Routes() []string {
	routes := make([]string, 0, len(Registry))
	for route := range Registry {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}
