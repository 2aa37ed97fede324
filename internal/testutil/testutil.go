// Package testutil provides shared test doubles for the cache packages.
package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is an slog.Handler that records emitted messages in order.
// It lets tests assert on the cache protocol's event sequence without
// capturing process-wide output.
type LogRecorder struct {
	mu   sync.Mutex
	msgs []string
}

// NewLogRecorder constructs an empty recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

// Logger returns a logger whose records this recorder captures.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Messages returns the recorded messages in emission order.
func (r *LogRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}

// Reset discards all recorded messages.
func (r *LogRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

// Enabled implements slog.Handler. All levels are recorded.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, rec.Message)
	return nil
}

// WithAttrs implements slog.Handler. Attrs are not recorded.
func (r *LogRecorder) WithAttrs([]slog.Attr) slog.Handler {
	return r
}

// WithGroup implements slog.Handler. Groups are not recorded.
func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}
