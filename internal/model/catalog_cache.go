package model

import (
	"fmt"
	"sync"
	"time"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/query"
)

const catalogCacheSweepFreq = time.Hour

type catalogCacheEntry struct {
	columns   []query.Column
	lastUsed  time.Time
	createdAt time.Time
	sizeBytes int64
}

// catalogCache keeps introspected catalogs in process, bounded by TTL and an optional byte budget.
type catalogCache struct {
	mu         sync.Mutex
	items      map[string]*catalogCacheEntry
	ttl        time.Duration
	lastSweep  time.Time
	totalBytes int64
	maxBytes   int64
}

func newCatalogCache(ttl time.Duration, maxBytes int64) *catalogCache {
	return &catalogCache{
		items:    make(map[string]*catalogCacheEntry),
		ttl:      ttl,
		maxBytes: maxBytes,
	}
}

func (c *catalogCache) get(key string, now time.Time) ([]query.Column, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)
	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.expired(entry, now) {
		c.deleteLocked(key)
		return nil, false
	}
	entry.lastUsed = now
	return entry.columns, true
}

func (c *catalogCache) set(key string, columns []query.Column, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("catalog_cache_store_failed", map[string]any{
				"error": fmt.Sprintf("%v", r),
			})
			logMemoryPressure()
		}
	}()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSweepLocked(now)

	sizeBytes := estimateCatalogBytes(columns)
	if c.maxBytes > 0 && sizeBytes > c.maxBytes {
		logger.Warn("catalog_cache_item_too_large", map[string]any{
			"item_bytes": sizeBytes,
			"max_bytes":  c.maxBytes,
		})
		return
	}

	var replaced int64
	if existing, ok := c.items[key]; ok {
		replaced = existing.sizeBytes
	}
	if c.maxBytes > 0 && c.totalBytes-replaced+sizeBytes > c.maxBytes {
		logger.Warn("catalog_cache_memory_limit_exceeded", map[string]any{
			"item_bytes":  sizeBytes,
			"total_bytes": c.totalBytes,
			"max_bytes":   c.maxBytes,
		})
		logMemoryPressure()
		return
	}

	c.totalBytes -= replaced
	c.items[key] = &catalogCacheEntry{
		columns:   columns,
		lastUsed:  now,
		createdAt: now,
		sizeBytes: sizeBytes,
	}
	c.totalBytes += sizeBytes
}

func (c *catalogCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*catalogCacheEntry)
	c.totalBytes = 0
}

func (c *catalogCache) expired(entry *catalogCacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.createdAt) > c.ttl
}

func (c *catalogCache) deleteLocked(key string) {
	if entry, ok := c.items[key]; ok {
		c.totalBytes -= entry.sizeBytes
		delete(c.items, key)
	}
}

func (c *catalogCache) maybeSweepLocked(now time.Time) {
	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) < catalogCacheSweepFreq {
		return
	}
	for key, entry := range c.items {
		if c.expired(entry, now) {
			c.deleteLocked(key)
		}
	}
	c.lastSweep = now
}

func estimateCatalogBytes(columns []query.Column) int64 {
	var size int64
	for _, c := range columns {
		size += int64(len(c.Name) + len(c.Type))
	}
	return size
}
