package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/id"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the actor can perform the action on the entity."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/batch-check", a.batchCheck,
		forge.WithSummary("Batch authorization check"),
		forge.WithDescription("Evaluates multiple authorization checks in one request."),
		forge.WithOperationID("authzBatchCheck"),
		forge.WithRequestSchema(BatchCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchCheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	domainReq, err := toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), domainReq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	domainReq, err := toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), domainReq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchCheck(ctx forge.Context, req *BatchCheckRequest) (*BatchCheckResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]CheckResponse, len(req.Checks))
	for i := range req.Checks {
		domainReq, err := toCheckRequest(&req.Checks[i])
		if err != nil {
			return nil, err
		}
		result, err := a.eng.Check(ctx.Context(), domainReq)
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toCheckResponse(result)
	}

	resp := &BatchCheckResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toCheckRequest(r *CheckRequest) (*verdict.CheckRequest, error) {
	if r.ActorID == "" || r.Action == "" || r.Entity == "" {
		return nil, forge.BadRequest("actor_id, action, and entity are required")
	}
	actorID, err := id.ParseUserID(r.ActorID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid actor_id: %v", err))
	}
	req := &verdict.CheckRequest{
		ActorID: actorID,
		Action:  verdict.Action(r.Action),
		Entity:  verdict.Entity(r.Entity),
		Context: r.Context,
	}
	if r.Resource != nil {
		res, err := toResource(r.Resource)
		if err != nil {
			return nil, err
		}
		req.Resource = res
	}
	return req, nil
}

func toResource(p *ResourcePayload) (*verdict.Resource, error) {
	res := &verdict.Resource{
		ID:              p.ID,
		Confirmed:       p.Confirmed,
		ParentID:        p.ParentID,
		ParentConfirmed: p.ParentConfirmed,
		Dependents:      p.Dependents,
		RoleName:        p.RoleName,
		Attributes:      p.Attributes,
	}
	var err error
	if res.CreatedBy, err = optionalUserID(p.CreatedBy, "created_by"); err != nil {
		return nil, err
	}
	if res.ConfirmedBy, err = optionalUserID(p.ConfirmedBy, "confirmed_by"); err != nil {
		return nil, err
	}
	if res.AssignedTo, err = optionalUserID(p.AssignedTo, "assigned_to"); err != nil {
		return nil, err
	}
	return res, nil
}

func optionalUserID(s, field string) (id.UserID, error) {
	if s == "" {
		return id.Nil, nil
	}
	uid, err := id.ParseUserID(s)
	if err != nil {
		return id.Nil, forge.BadRequest(fmt.Sprintf("invalid %s: %v", field, err))
	}
	return uid, nil
}

func toCheckResponse(r *verdict.CheckResult) *CheckResponse {
	return &CheckResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Reason:     r.Reason,
		EvalTimeNs: r.EvalTimeNs,
	}
}
