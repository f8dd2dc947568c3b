package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/query"

	"github.com/redis/go-redis/v9"
)

const catalogKeyPrefix = "catalog:"

// ColumnSource reads the live column list of a table from the database.
type ColumnSource interface {
	TableColumns(ctx context.Context, table string) ([]query.Column, error)
}

// Catalogs resolves the column catalog of a resource: declared columns win,
// otherwise memory cache, then Redis, then introspection.
type Catalogs struct {
	source ColumnSource
	rdb    *redis.Client
	ttl    time.Duration
	cache  *catalogCache
	now    func() time.Time
}

func NewCatalogs(source ColumnSource, rdb *redis.Client, ttl time.Duration, maxBytes int64) *Catalogs {
	return &Catalogs{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		cache:  newCatalogCache(ttl, maxBytes),
		now:    time.Now,
	}
}

func catalogKey(table string) string {
	return catalogKeyPrefix + table
}

// Catalog returns the catalog used to compile queries for res.
func (c *Catalogs) Catalog(ctx context.Context, res *Resource) (query.Catalog, error) {
	if res == nil {
		return nil, errors.New("resource is nil")
	}
	if res.Declared() {
		return query.StaticCatalog(res.Columns), nil
	}

	key := catalogKey(res.Table)
	if cols, ok := c.cache.get(key, c.now()); ok {
		return query.StaticCatalog(cols), nil
	}

	// 1. Redis
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Result()
		switch {
		case err == nil:
			var cols []query.Column
			if err := json.Unmarshal([]byte(cached), &cols); err != nil {
				return nil, fmt.Errorf("invalid catalog in Redis for table '%s': %w", res.Table, err)
			}
			c.cache.set(key, cols, c.now())
			return query.StaticCatalog(cols), nil
		case !errors.Is(err, redis.Nil):
			logger.Warn("catalog_redis_get_failed", map[string]any{
				"table": res.Table,
				"error": err.Error(),
			})
		}
	}

	// 2. Introspection
	if c.source == nil {
		return nil, fmt.Errorf("resource %q declares no columns and no column source is configured", res.Name)
	}
	cols, err := c.source.TableColumns(ctx, res.Table)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", res.Table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("introspect %s: table has no columns", res.Table)
	}
	logger.Info("catalog_introspected", map[string]any{
		"table":   res.Table,
		"columns": len(cols),
	})
	c.cache.set(key, cols, c.now())

	// 3. Redis store
	if c.rdb != nil {
		data, err := json.Marshal(cols)
		if err != nil {
			return nil, fmt.Errorf("marshal catalog failed: %w", err)
		}
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Warn("catalog_redis_set_failed", map[string]any{
				"table": res.Table,
				"error": err.Error(),
			})
		}
	}
	return query.StaticCatalog(cols), nil
}

// Flush удаляет все каталоги из памяти и из Redis. Returns the number of Redis keys removed.
func (c *Catalogs) Flush(ctx context.Context) (int, error) {
	c.cache.clear()
	if c.rdb == nil {
		return 0, nil
	}
	deleted := 0
	iter := c.rdb.Scan(ctx, 0, catalogKeyPrefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete key %s: %w", key, err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan error: %w", err)
	}
	return deleted, nil
}

// NormalizeColumnType maps a database type name onto the catalog type vocabulary.
func NormalizeColumnType(dbType string) string {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "smallint", "integer", "int", "int2", "int4", "int8", "bigint", "serial", "bigserial", "tinyint", "mediumint":
		return "int"
	case "real", "double precision", "double", "float", "float4", "float8", "numeric", "decimal":
		return "float"
	case "boolean", "bool":
		return "bool"
	case "uuid":
		return "UUID"
	case "date":
		return "date"
	case "time", "time without time zone", "time with time zone", "timetz":
		return "time"
	case "timestamp", "timestamp without time zone", "timestamp with time zone", "timestamptz", "datetime":
		return "datetime"
	default:
		return "string"
	}
}
