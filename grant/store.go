package grant

import (
	"context"
	"time"

	"github.com/trackline/verdict/id"
)

// Store defines persistence operations for access grants.
type Store interface {
	// CreateGrant persists a new grant. Any existing active grant for the
	// same (user, scope) pair is deactivated in the same operation, so the
	// one-active-grant-per-scope invariant holds even under concurrent
	// creation.
	CreateGrant(ctx context.Context, g *Grant) error

	// GetGrant retrieves a grant by ID.
	GetGrant(ctx context.Context, grantID id.GrantID) (*Grant, error)

	// ActiveGrant returns the active grant for a user and resource scope,
	// or nil when none exists. Expiry is not checked here; callers apply
	// Grant.Effective against their own clock.
	ActiveGrant(ctx context.Context, userID id.UserID, entity, resourceID string) (*Grant, error)

	// ActiveGlobalGrant returns the user's active global-scope grant, or
	// nil when none exists.
	ActiveGlobalGrant(ctx context.Context, userID id.UserID) (*Grant, error)

	// DeactivateGrant marks a grant inactive. Deactivating an already
	// inactive grant is a no-op.
	DeactivateGrant(ctx context.Context, grantID id.GrantID) error

	// ListGrants returns grants matching the filter.
	ListGrants(ctx context.Context, filter *ListFilter) ([]*Grant, error)

	// CountGrants returns the number of grants matching the filter.
	CountGrants(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteExpiredGrants removes grants expired before the given time and
	// returns how many were removed.
	DeleteExpiredGrants(ctx context.Context, now time.Time) (int64, error)
}
