package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	fileKey      contextKey = "file"
)

// WithSessionID tags the context with a review session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithFile tags the context with the path of the CSV under review.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileKey, path)
}

// SessionID returns the session ID from ctx, or "" if none was set.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// File returns the CSV path from ctx, or "" if none was set.
func File(ctx context.Context) string {
	path, _ := ctx.Value(fileKey).(string)
	return path
}
