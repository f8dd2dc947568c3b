//go:build integration

package itests

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"CursorAPI/internal"
	"CursorAPI/internal/db"
	"CursorAPI/internal/logger"
	"CursorAPI/internal/query"

	"github.com/jackc/pgx/v5"
)

// testDatabase is a throwaway Postgres database created next to the configured one.
type testDatabase struct {
	name     string
	dsn      string // points at the test database
	adminDSN string // points at "postgres", used to create and drop it
}

// newTestDatabase derives "<db>_test" from baseDSN. Only local URL DSNs are accepted.
func newTestDatabase(baseDSN string) (*testDatabase, error) {
	u, err := url.Parse(baseDSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, errors.New("only URL DSN supported: postgres://...")
	}
	if host := u.Hostname(); host != "localhost" && host != "127.0.0.1" {
		return nil, fmt.Errorf("refuse non-local host for tests: %s", host)
	}

	base := strings.TrimPrefix(u.Path, "/")
	if base == "" {
		base = "cursorapi"
	}
	tdb := &testDatabase{name: strings.TrimSuffix(base, "_test") + "_test"}

	u.Path = "/" + tdb.name
	tdb.dsn = u.String()
	u.Path = "/postgres"
	tdb.adminDSN = u.String()
	return tdb, nil
}

func (tdb *testDatabase) admin(ctx context.Context, fn func(conn *pgx.Conn) error) error {
	conn, err := pgx.Connect(ctx, tdb.adminDSN)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return fn(conn)
}

func (tdb *testDatabase) create() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return tdb.admin(ctx, func(conn *pgx.Conn) error {
		var exists bool
		if err := conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname=$1)`, tdb.name,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			// остатки прошлого прогона: начинаем с чистой схемы
			if err := tdb.dropWith(ctx, conn); err != nil {
				return err
			}
		}
		_, err := conn.Exec(ctx, `CREATE DATABASE `+query.QuoteIdent(tdb.name))
		return err
	})
}

func (tdb *testDatabase) drop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return tdb.admin(ctx, func(conn *pgx.Conn) error {
		return tdb.dropWith(ctx, conn)
	})
}

func (tdb *testDatabase) dropWith(ctx context.Context, conn *pgx.Conn) error {
	_, _ = conn.Exec(ctx, `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`, tdb.name)
	_, err := conn.Exec(ctx, `DROP DATABASE IF EXISTS `+query.QuoteIdent(tdb.name))
	return err
}

func (tdb *testDatabase) migrate() error {
	root, err := internal.FindRepoRoot()
	if err != nil {
		return fmt.Errorf("repo root not found: %w", err)
	}
	return db.Migrate(tdb.dsn, filepath.Join(root, "migrations"), db.MigrateUp)
}

// setupTestDB creates and migrates the test database, then hands its DSN to
// initFunc (usually db.InitPostgres). The returned teardown drops it.
func setupTestDB(baseDSN string, initFunc func(string) error) (teardown func() error, err error) {
	if os.Getenv("APP_ENV") == "production" {
		return nil, errors.New("APP_ENV=production, aborting tests")
	}
	tdb, err := newTestDatabase(baseDSN)
	if err != nil {
		return nil, err
	}

	if err := tdb.create(); err != nil {
		return nil, fmt.Errorf("create DB %q: %w (POSTGRES_DSN=%s). Ensure Postgres is running", tdb.name, err, redactDSN(baseDSN))
	}
	if err := tdb.migrate(); err != nil {
		_ = tdb.drop()
		return nil, fmt.Errorf("migrate %q: %w", tdb.name, err)
	}
	logger.Info("test_db_ready", map[string]any{"db": tdb.name})

	if initFunc != nil {
		if err := initFunc(tdb.dsn); err != nil {
			_ = tdb.drop()
			return nil, fmt.Errorf("init pool: %w (POSTGRES_DSN=%s)", err, redactDSN(baseDSN))
		}
	}
	return tdb.drop, nil
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil || u.User.Username() == "" {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), "******")
	return u.String()
}
