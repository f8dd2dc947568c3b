package model

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"CursorAPI/internal/logger"
)

func readAllocBytes() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func countResourcesAndColumns() (int, int, int) {
	declared := 0
	columns := 0
	for _, r := range Registry {
		if r.Declared() {
			declared++
		}
		columns += len(r.Columns)
	}
	return len(Registry), declared, columns
}

// logRegistryStats пишет в лог размер реестра и доступную память процесса.
func logRegistryStats() {
	resources, declared, columns := countResourcesAndColumns()
	alloc := readAllocBytes()
	limit, source := detectMemoryLimit()
	fields := map[string]any{
		"resources":         resources,
		"declared_catalogs": declared,
		"introspected":      resources - declared,
		"declared_columns":  columns,
		"heap_alloc":        formatBytes(alloc),
		"memory_limit_src":  source,
	}
	if limit > 0 {
		fields["memory_limit"] = formatBytes(limit)
	}
	logger.Info("registry_loaded", fields)
}

func logMemoryPressure() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	limit, source := detectMemoryLimit()
	logger.Error("catalog_cache_memory_pressure", map[string]any{
		"alloc_bytes":      stats.Alloc,
		"heap_inuse":       stats.HeapInuse,
		"memory_limit":     limit,
		"memory_limit_src": source,
	})
}

// detectMemoryLimit best-effort detection of memory limit (cgroup or MemTotal). Returns bytes and source label.
func detectMemoryLimit() (uint64, string) {
	// cgroup v2
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		if v, ok := parseLimitValue(string(data)); ok {
			return v, "cgroup v2 memory.max"
		}
	}
	// cgroup v1
	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if v, ok := parseLimitValue(string(data)); ok {
			return v, "cgroup v1 memory.limit_in_bytes"
		}
	}
	if data, err := os.ReadFile("/proc/meminfo"); err == nil {
		for _, ln := range strings.Split(string(data), "\n") {
			if !strings.HasPrefix(ln, "MemTotal:") {
				continue
			}
			fields := strings.Fields(ln)
			if len(fields) >= 2 {
				if kb, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
					return kb * 1024, "proc meminfo MemTotal"
				}
			}
		}
	}
	return 0, "unknown"
}

func parseLimitValue(raw string) (uint64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "max" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatBytes(v uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case v >= gb:
		return strconv.FormatFloat(float64(v)/float64(gb), 'f', 2, 64) + " GB"
	case v >= mb:
		return strconv.FormatFloat(float64(v)/float64(mb), 'f', 2, 64) + " MB"
	case v >= kb:
		return strconv.FormatFloat(float64(v)/float64(kb), 'f', 2, 64) + " KB"
	default:
		return strconv.FormatUint(v, 10) + " B"
	}
}
