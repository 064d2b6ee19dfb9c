package cli

import (
	"context"

	"fintrack/internal/auth"
	"fintrack/internal/log"
)

// logSessionEvents records sign-ups, sign-ins and sign-outs until ctx ends
// or the stream closes.
func logSessionEvents(ctx context.Context, logger *log.Logger, events <-chan auth.SessionEvent) {
	logger = logger.WithComponent(log.ComponentAuth)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			logger.Info("Session changed", "kind", string(ev.Kind), log.FieldOwnerID, ev.UserID, "at", ev.At)
		}
	}
}
