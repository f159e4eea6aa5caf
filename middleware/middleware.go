// Package middleware provides HTTP authorization middleware for Verdict.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/trackline/verdict"
)

// Require enforces authorization. It resolves the acting user from the
// request context and checks whether that user can perform the given
// action on the entity. When the route carries an "id" parameter it is
// attached to the check as the resource ID.
func Require(eng *verdict.Engine, action verdict.Action, entity verdict.Entity) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actorID, ok := verdict.ActorFromContext(ctx.Context())
			if !ok {
				return denyResponse(ctx)
			}

			req := &verdict.CheckRequest{
				ActorID: actorID,
				Action:  action,
				Entity:  entity,
			}
			if resourceID := ctx.Param("id"); resourceID != "" {
				req.Resource = &verdict.Resource{ID: resourceID}
			}

			if err := eng.Enforce(ctx.Context(), req); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the checks pass. The resolved
// actor ID is injected into each check before evaluation.
func RequireAny(eng *verdict.Engine, checks ...verdict.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actorID, ok := verdict.ActorFromContext(ctx.Context())
			if !ok {
				return denyResponse(ctx)
			}
			for i := range checks {
				c := checks[i]
				c.ActorID = actorID
				result, err := eng.Check(ctx.Context(), &c)
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL checks pass.
func RequireAll(eng *verdict.Engine, checks ...verdict.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			actorID, ok := verdict.ActorFromContext(ctx.Context())
			if !ok {
				return denyResponse(ctx)
			}
			for i := range checks {
				c := checks[i]
				c.ActorID = actorID
				if err := eng.Enforce(ctx.Context(), &c); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
