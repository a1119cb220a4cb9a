package telemetry

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

var minLevel atomic.Int64

func init() {
	minLevel.Store(int64(slog.LevelInfo))
}

// SetLevel changes the minimum level written. Unknown names keep the current level.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		minLevel.Store(int64(slog.LevelDebug))
	case "info":
		minLevel.Store(int64(slog.LevelInfo))
	case "warn", "warning":
		minLevel.Store(int64(slog.LevelWarn))
	case "error":
		minLevel.Store(int64(slog.LevelError))
	}
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(slog.LevelDebug, msg, fields)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

// The handler is built per write so that a swapped os.Stdout is picked up.
func write(level slog.Level, msg string, fields map[string]any) {
	if level < slog.Level(minLevel.Load()) {
		return
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	}))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, attrFor(k, fields[k]))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func attrFor(key string, v any) slog.Attr {
	switch val := v.(type) {
	case error:
		return slog.String(key, val.Error())
	case nil:
		return slog.Any(key, nil)
	default:
		return slog.Any(key, val)
	}
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
	case slog.LevelKey:
		return slog.String("level", strings.ToLower(a.Value.String()))
	}
	return a
}
