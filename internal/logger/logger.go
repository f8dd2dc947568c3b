package logger

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
)

const appName = "cursorapi"

var (
	mu  sync.Mutex
	log hclog.Logger
)

// Init configures JSON logging into log/app.log under baseDir.
func Init(baseDir string) error {
	logDir := filepath.Join(baseDir, "log")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	InitWriter(f)
	return nil
}

// InitWriter sends JSON log lines to w.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = hclog.New(&hclog.LoggerOptions{
		Name:       appName,
		Level:      hclog.Info,
		Output:     w,
		JSONFormat: true,
		TimeFormat: "2006-01-02T15:04:05.000000000Z07:00",
	})
}

func SetDebug(enabled bool) {
	l := get()
	if enabled {
		l.SetLevel(hclog.Debug)
		return
	}
	l.SetLevel(hclog.Info)
}

func Debug(msg string, fields map[string]any) {
	get().Debug(msg, args(fields)...)
}

func Info(msg string, fields map[string]any) {
	get().Info(msg, args(fields)...)
}

func Warn(msg string, fields map[string]any) {
	get().Warn(msg, args(fields)...)
}

func Error(msg string, fields map[string]any) {
	get().Error(msg, args(fields)...)
}

func get() hclog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = hclog.New(&hclog.LoggerOptions{Name: appName, Output: io.Discard})
	}
	return log
}

// args flattens fields into sorted key/value pairs.
func args(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, fields[k])
	}
	return out
}
