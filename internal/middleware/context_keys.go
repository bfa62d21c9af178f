package middleware

import (
	"context"
	"log/slog"
)

// contextKey is a private type for context keys set by this package.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	userIDCtxKey = contextKey("userID")
)

// GetLoggerFromCtx retrieves the request-scoped logger from the context. It
// returns the default logger when none was injected, so callers never need a
// nil check.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// GetUserIDFromCtx retrieves the authenticated user's ID from the context.
// The boolean reports whether an authenticated user is present; system
// initiated work has none.
func GetUserIDFromCtx(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDCtxKey).(int64)
	return userID, ok
}
