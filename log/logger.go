package log

import "context"

// Logger is the structured logging interface used across the server.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...map[string]any)
	Info(ctx context.Context, msg string, fields ...map[string]any)
	Warn(ctx context.Context, msg string, fields ...map[string]any)
	Error(ctx context.Context, msg string, err error, fields ...map[string]any)
	Fatal(ctx context.Context, msg string, err error, fields ...map[string]any)
	With(fields map[string]any) Logger
}
