package verdict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/trackline/verdict/decisionlog"
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/plugin"
	"github.com/trackline/verdict/store"
)

// Engine is the central policy decision engine. It resolves actor
// snapshots, dispatches checks to the entity descriptor table, consults
// the access grant registry, and fires plugin hooks.
type Engine struct {
	store   store.Store
	cache   SnapshotCache
	plugins *plugin.Registry
	logger  *slog.Logger
	config  Config
	clock   func() time.Time
}

// NewEngine creates a new Verdict engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("verdict: store is required")
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Check performs an authorization check. This is the hot path. Verdicts
// are never cached: confirmation state and grant expiry are re-read on
// every call. Decisions are total — an unrecognized action or entity
// yields a deny result; only caller contract violations and store
// failures use the error channel.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	start := time.Now()

	desc, known := descriptors[req.Entity]
	if known && req.Action.Valid() && desc.resourceRequired(req.Action) && req.Resource == nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrResourceRequired, req.Action, req.Entity)
	}

	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, req)
	}

	snap, err := e.resolveSnapshot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("verdict: resolve actor: %w", err)
	}

	ec := &evalContext{eng: e, req: req, snap: snap, now: e.clock()}

	result, err := e.evaluate(ctx, ec)
	if err != nil {
		return nil, err
	}
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	if e.config.RecordDecisions {
		e.recordDecision(ctx, req, result)
	}

	if e.plugins != nil {
		e.plugins.EmitAfterCheck(ctx, req, result)
	}

	return result, nil
}

// Enforce returns an error if the authorization check is denied.
func (e *Engine) Enforce(ctx context.Context, req *CheckRequest) error {
	result, err := e.Check(ctx, req)
	if err != nil {
		return fmt.Errorf("verdict check: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}
	return nil
}

// Can is a shorthand for a resource-less authorization check. The actor
// is resolved from the store. Suitable for list-level actions only; checks
// that inspect resource state need the full Check API.
func (e *Engine) Can(ctx context.Context, actorID id.UserID, action Action, entity Entity) (bool, error) {
	result, err := e.Check(ctx, &CheckRequest{
		ActorID: actorID,
		Action:  action,
		Entity:  entity,
	})
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// InvalidateActor drops the actor's cached snapshot. Call after mutating
// their roles or permissions when a snapshot cache is configured.
func (e *Engine) InvalidateActor(ctx context.Context, actorID id.UserID) {
	if e.cache != nil {
		e.cache.InvalidateActor(ctx, actorID)
	}
}

// resolveSnapshot builds the actor's role and permission sets: from the
// request when the caller pre-resolved them, else from the store via the
// optional snapshot cache.
func (e *Engine) resolveSnapshot(ctx context.Context, req *CheckRequest) (*Snapshot, error) {
	if req.Roles != nil || req.Permissions != nil {
		return NewSnapshot(req.ActorID, req.Roles, req.Permissions), nil
	}

	useCache := e.cache != nil && e.config.SnapshotTTL > 0
	if useCache {
		if snap, ok := e.cache.Get(ctx, req.ActorID); ok {
			return snap, nil
		}
	}

	roles, err := e.store.ListRoleNamesForUser(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	perms, err := e.store.ListPermissionNamesForUser(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(req.ActorID, roles, perms)
	if useCache {
		e.cache.Set(ctx, req.ActorID, snap)
	}

	return snap, nil
}

func (e *Engine) recordDecision(ctx context.Context, req *CheckRequest, result *CheckResult) {
	var resourceID string
	if req.Resource != nil {
		resourceID = req.Resource.ID
	}
	entry := &decisionlog.Entry{
		ID:         id.NewDecisionLogID(),
		ActorID:    req.ActorID,
		Action:     string(req.Action),
		Entity:     string(req.Entity),
		ResourceID: resourceID,
		Decision:   string(result.Decision),
		Reason:     result.Reason,
		EvalTimeNs: result.EvalTimeNs,
		RequestIP:  requestIPFromContext(ctx),
		CreatedAt:  e.clock(),
	}
	if err := e.store.CreateDecisionLog(ctx, entry); err != nil {
		e.logger.Warn("verdict: decision log write failed",
			slog.String("actor", req.ActorID.String()),
			slog.String("entity", string(req.Entity)),
			slog.String("action", string(req.Action)),
			slog.Any("error", err))
	}
}
