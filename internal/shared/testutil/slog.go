// Package testutil provides test-only helpers shared across packages.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Record is one captured log entry.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory so
// tests can assert on what a component logged. Handlers derived via
// WithAttrs share the same record store, so output from a
// logger.With(...) child still lands in the parent recorder. Safe for
// use from the goroutines a pipeline run spawns.
type LogRecorder struct {
	store *recordStore
	attrs []slog.Attr
}

type recordStore struct {
	mu      sync.Mutex
	records []Record
}

// NewLogger returns a logger whose output is captured by the returned
// recorder. Every level is enabled.
func NewLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{store: &recordStore{}}
	return slog.New(rec), rec
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, rec.NumAttrs()+len(r.attrs))
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records = append(r.store.records, Record{
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   attrs,
	})
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	merged = append(merged, r.attrs...)
	merged = append(merged, attrs...)
	return &LogRecorder{store: r.store, attrs: merged}
}

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of everything captured so far.
func (r *LogRecorder) Records() []Record {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]Record, len(r.store.records))
	copy(out, r.store.records)
	return out
}

// HasMessage reports whether any record's message contains the substring.
func (r *LogRecorder) HasMessage(substr string) bool {
	for _, rec := range r.Records() {
		if strings.Contains(rec.Message, substr) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any record carries the given attribute value.
func (r *LogRecorder) HasAttr(key string, value any) bool {
	for _, rec := range r.Records() {
		if v, ok := rec.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// AssertMessage fails the test when no record at the given level
// contains the substring.
func AssertMessage(t *testing.T, rec *LogRecorder, level slog.Level, substr string) {
	t.Helper()
	for _, r := range rec.Records() {
		if r.Level == level && strings.Contains(r.Message, substr) {
			return
		}
	}
	t.Errorf("no %s log containing %q; captured:", level, substr)
	for _, r := range rec.Records() {
		t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
}
