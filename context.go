package verdict

import (
	"context"

	"github.com/trackline/verdict/id"
)

type contextKey int

const (
	ctxKeyActorID contextKey = iota
	ctxKeyRequestIP
)

// WithActor returns a context carrying the acting user's ID.
// Use this for standalone mode (without Forge).
func WithActor(ctx context.Context, actorID id.UserID) context.Context {
	return context.WithValue(ctx, ctxKeyActorID, actorID)
}

// WithRequestIP returns a context carrying the client IP, recorded on
// decision log entries.
func WithRequestIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestIP, ip)
}

func actorIDFromContext(ctx context.Context) (id.UserID, bool) {
	v, ok := ctx.Value(ctxKeyActorID).(id.UserID)
	if !ok || v.IsNil() {
		return id.Nil, false
	}
	return v, true
}

func requestIPFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyRequestIP).(string)
	if !ok {
		return ""
	}
	return v
}
