package f90doc

import (
	"context"
	"log/slog"
)

// Logger is a nil-safe wrapper around a [slog.Logger]. The zero value discards all records.
type Logger struct {
	L *slog.Logger
}

// Log emits a record at level when logging is enabled.
func (l Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.L == nil {
		return
	}
	l.L.LogAttrs(context.Background(), level, msg, attrs...)
}

// Enabled reports whether records at level would be emitted.
func (l Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(context.Background(), level)
}
