package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the session ID and file path carried by an event's
// context onto the event.
type ContextHook struct{}

// Run implements zerolog.Hook.
func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := SessionID(ctx); id != "" {
		e.Str("session_id", id)
	}
	if path := File(ctx); path != "" {
		e.Str("file", path)
	}
}
