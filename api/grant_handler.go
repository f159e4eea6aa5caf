package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/id"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("grants"))

	if err := g.POST("/grants", a.createGrant,
		forge.WithSummary("Create access grant"),
		forge.WithDescription("Creates an access grant, deactivating any prior active grant for the same user and scope."),
		forge.WithOperationID("createGrant"),
		forge.WithRequestSchema(CreateGrantRequest{}),
		forge.WithCreatedResponse(&grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/grants/:grantId", a.getGrant,
		forge.WithSummary("Get grant"),
		forge.WithDescription("Returns details of a specific grant."),
		forge.WithOperationID("getGrant"),
		forge.WithResponseSchema(http.StatusOK, "Grant details", &grant.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/grants/:grantId", a.deactivateGrant,
		forge.WithSummary("Deactivate grant"),
		forge.WithDescription("Deactivates a grant. Grants are never hard-deleted through this endpoint."),
		forge.WithOperationID("deactivateGrant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/grants", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithDescription("Lists grants with optional filters."),
		forge.WithOperationID("listGrants"),
		forge.WithRequestSchema(ListGrantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant list", []*grant.Grant{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createGrant(ctx forge.Context, req *CreateGrantRequest) (*grant.Grant, error) {
	if req.UserID == "" {
		return nil, forge.BadRequest("user_id is required")
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
	}

	accessType := grant.AccessType(req.AccessType)
	if !accessType.Valid() {
		return nil, mapError(fmt.Errorf("%q: %w", req.AccessType, verdict.ErrInvalidAccessType))
	}

	// Resource-specific grants name both halves of the scope.
	if (req.Entity == "") != (req.ResourceID == "") {
		return nil, forge.BadRequest("entity and resource_id must be set together or both empty")
	}

	g := &grant.Grant{
		ID:         id.NewGrantID(),
		UserID:     userID,
		Entity:     req.Entity,
		ResourceID: req.ResourceID,
		AccessType: accessType,
		IsActive:   true,
		Metadata:   req.Metadata,
	}

	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid expires_at: %v", err))
		}
		g.ExpiresAt = &t
	}

	if req.GrantedBy != "" {
		gb, err := id.ParseUserID(req.GrantedBy)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid granted_by: %v", err))
		}
		g.GrantedBy = gb
	}

	if _, err := a.eng.Store().GetUser(ctx.Context(), userID); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.Store().CreateGrant(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantCreated(ctx.Context(), g)
	}

	return g, ctx.JSON(http.StatusCreated, g)
}

func (a *API) getGrant(ctx forge.Context, _ *GetGrantRequest) (*grant.Grant, error) {
	grantID, err := parseGrantParam(ctx)
	if err != nil {
		return nil, err
	}

	g, err := a.eng.Store().GetGrant(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) deactivateGrant(ctx forge.Context, _ *GetGrantRequest) (*struct{}, error) {
	grantID, err := parseGrantParam(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().DeactivateGrant(ctx.Context(), grantID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantDeactivated(ctx.Context(), grantID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) ([]*grant.Grant, error) {
	filter := &grant.ListFilter{
		Entity:     req.Entity,
		ResourceID: req.ResourceID,
		AccessType: grant.AccessType(req.AccessType),
		IsActive:   req.IsActive,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}

	if req.UserID != "" {
		uid, err := id.ParseUserID(req.UserID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid user_id: %v", err))
		}
		filter.UserID = &uid
	}

	grants, err := a.eng.Store().ListGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return grants, ctx.JSON(http.StatusOK, grants)
}

func parseGrantParam(ctx forge.Context) (id.GrantID, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return id.Nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}
	return grantID, nil
}
