package cli

import (
	"context"
	"fmt"

	"CursorAPI/internal/config"
	"CursorAPI/internal/db"
	"CursorAPI/internal/model"
	"CursorAPI/internal/resolver"
)

// backend is what the configured database driver provides.
type backend interface {
	resolver.Backend
	model.ColumnSource
	Ping(ctx context.Context) error
}

// openBackend connects to the configured database. The returned func releases it.
func openBackend(cfg *config.Config) (backend, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
			return nil, nil, err
		}
		return db.NewPgxBackend(db.Pool), db.ClosePostgres, nil
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db.NewSQLiteBackend(conn), func() { _ = conn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
