package verdict

import (
	"context"

	"github.com/xraph/forge"

	"github.com/trackline/verdict/id"
)

// ActorFromContext resolves the acting user's ID from the request context.
// Falls back to the standalone WithActor value when the Forge user context
// is not set.
func ActorFromContext(ctx context.Context) (id.UserID, bool) {
	if userID := forge.UserIDFromContext(ctx); userID != "" {
		parsed, err := id.ParseUserID(userID)
		if err == nil {
			return parsed, true
		}
	}

	return actorIDFromContext(ctx)
}
