// Package logger defines the structured logging contract used across the obsdemo service.
// The zap-backed implementation lives in internal/infrastructure/monitoring.
package logger

import "context"

// Fields is a set of structured key/value pairs attached to a log line.
type Fields map[string]interface{}

// Logger is the structured logger passed to every component.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	// Fatal logs and terminates the process.
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields returns a child logger that always carries fields.
	WithFields(fields Fields) Logger
	// ForContext returns the logger stored in ctx, or the receiver.
	ForContext(ctx context.Context) Logger

	// Sync flushes buffered entries.
	Sync() error
}

// Merge flattens several field sets; later keys win.
func Merge(fields ...Fields) Fields {
	out := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}
