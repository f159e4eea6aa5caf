package verdict

import (
	"context"

	"github.com/trackline/verdict/id"
)

// SnapshotCache caches resolved actor snapshots (role and permission name
// sets) keyed by actor ID. Verdicts are never cached: confirmation state
// and grant expiry must be read fresh on every check.
type SnapshotCache interface {
	// Get returns a cached snapshot, if available.
	Get(ctx context.Context, actorID id.UserID) (*Snapshot, bool)

	// Set stores a snapshot in the cache.
	Set(ctx context.Context, actorID id.UserID, snap *Snapshot)

	// InvalidateActor removes the cached snapshot for one actor.
	InvalidateActor(ctx context.Context, actorID id.UserID)

	// InvalidateAll removes all cached snapshots.
	InvalidateAll(ctx context.Context)
}
