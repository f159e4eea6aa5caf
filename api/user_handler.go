package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/trackline/verdict/actor"
	"github.com/trackline/verdict/id"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("users"))

	if err := g.POST("/users", a.createUser,
		forge.WithSummary("Create user"),
		forge.WithDescription("Creates a new user."),
		forge.WithOperationID("createUser"),
		forge.WithRequestSchema(CreateUserRequest{}),
		forge.WithCreatedResponse(&actor.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId", a.getUser,
		forge.WithSummary("Get user"),
		forge.WithDescription("Returns details of a specific user."),
		forge.WithOperationID("getUser"),
		forge.WithResponseSchema(http.StatusOK, "User details", &actor.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/users/:userId", a.updateUser,
		forge.WithSummary("Update user"),
		forge.WithDescription("Updates an existing user."),
		forge.WithOperationID("updateUser"),
		forge.WithRequestSchema(UpdateUserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated user", &actor.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/users/:userId", a.deleteUser,
		forge.WithSummary("Delete user"),
		forge.WithDescription("Deletes a user and their role and permission bindings."),
		forge.WithOperationID("deleteUser"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users", a.listUsers,
		forge.WithSummary("List users"),
		forge.WithDescription("Lists users with optional filters."),
		forge.WithOperationID("listUsers"),
		forge.WithRequestSchema(ListUsersRequest{}),
		forge.WithResponseSchema(http.StatusOK, "User list", []*actor.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId/roles", a.listUserRoles,
		forge.WithSummary("List user roles"),
		forge.WithDescription("Returns the names of roles bound to the user."),
		forge.WithOperationID("listUserRoles"),
		forge.WithResponseSchema(http.StatusOK, "Role names", []string{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/users/:userId/roles", a.assignRole,
		forge.WithSummary("Assign role"),
		forge.WithDescription("Binds a role to a user."),
		forge.WithOperationID("assignRole"),
		forge.WithRequestSchema(AssignRoleRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/users/:userId/roles/:roleId", a.revokeRole,
		forge.WithSummary("Revoke role"),
		forge.WithDescription("Removes a role binding from a user."),
		forge.WithOperationID("revokeRole"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId/permissions", a.listUserPermissions,
		forge.WithSummary("List user permissions"),
		forge.WithDescription("Returns the user's effective permission names, role-derived and direct."),
		forge.WithOperationID("listUserPermissions"),
		forge.WithResponseSchema(http.StatusOK, "Permission names", []string{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/users/:userId/permissions", a.grantPermission,
		forge.WithSummary("Grant direct permission"),
		forge.WithDescription("Binds a permission directly to a user, outside any role."),
		forge.WithOperationID("grantPermission"),
		forge.WithRequestSchema(GrantPermissionRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/users/:userId/permissions/:permissionId", a.revokePermission,
		forge.WithSummary("Revoke direct permission"),
		forge.WithDescription("Removes a direct permission binding from a user."),
		forge.WithOperationID("revokePermission"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createUser(ctx forge.Context, req *CreateUserRequest) (*actor.User, error) {
	if req.Username == "" {
		return nil, forge.BadRequest("username is required")
	}

	u := &actor.User{
		ID:          id.NewUserID(),
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Department:  req.Department,
		IsActive:    true,
		Metadata:    req.Metadata,
	}

	if err := a.eng.Store().CreateUser(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitUserCreated(ctx.Context(), u)
	}

	return u, ctx.JSON(http.StatusCreated, u)
}

func (a *API) getUser(ctx forge.Context, _ *GetUserRequest) (*actor.User, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	u, err := a.eng.Store().GetUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) updateUser(ctx forge.Context, req *UpdateUserRequest) (*actor.User, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	u, err := a.eng.Store().GetUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Username != "" {
		u.Username = req.Username
	}
	if req.DisplayName != "" {
		u.DisplayName = req.DisplayName
	}
	if req.Department != "" {
		u.Department = req.Department
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		u.Metadata = req.Metadata
	}

	if err := a.eng.Store().UpdateUser(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}

	a.eng.InvalidateActor(ctx.Context(), userID)

	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) deleteUser(ctx forge.Context, _ *GetUserRequest) (*struct{}, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().DeleteUser(ctx.Context(), userID); err != nil {
		return nil, mapError(err)
	}

	a.eng.InvalidateActor(ctx.Context(), userID)
	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitUserDeleted(ctx.Context(), userID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listUsers(ctx forge.Context, req *ListUsersRequest) ([]*actor.User, error) {
	filter := &actor.ListFilter{
		Department: req.Department,
		IsActive:   req.IsActive,
		Search:     req.Search,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}

	users, err := a.eng.Store().ListUsers(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return users, ctx.JSON(http.StatusOK, users)
}

func (a *API) listUserRoles(ctx forge.Context, _ *GetUserRequest) ([]string, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	names, err := a.eng.Store().ListRoleNamesForUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return names, ctx.JSON(http.StatusOK, names)
}

func (a *API) assignRole(ctx forge.Context, req *AssignRoleRequest) (*struct{}, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	roleID, err := id.ParseRoleID(req.RoleID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role_id: %v", err))
	}

	// Both sides must exist before binding.
	if _, err := a.eng.Store().GetUser(ctx.Context(), userID); err != nil {
		return nil, mapError(err)
	}
	if _, err := a.eng.Store().GetRole(ctx.Context(), roleID); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.Store().AssignRole(ctx.Context(), userID, roleID); err != nil {
		return nil, mapError(err)
	}

	a.eng.InvalidateActor(ctx.Context(), userID)
	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitRoleAssigned(ctx.Context(), userID, roleID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) revokeRole(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	roleID, err := id.ParseRoleID(ctx.Param("roleId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role ID: %v", err))
	}

	if err := a.eng.Store().RevokeRole(ctx.Context(), userID, roleID); err != nil {
		return nil, mapError(err)
	}

	a.eng.InvalidateActor(ctx.Context(), userID)
	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitRoleRevoked(ctx.Context(), userID, roleID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listUserPermissions(ctx forge.Context, _ *GetUserRequest) ([]string, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	names, err := a.eng.Store().ListPermissionNamesForUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return names, ctx.JSON(http.StatusOK, names)
}

func (a *API) grantPermission(ctx forge.Context, req *GrantPermissionRequest) (*struct{}, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	permID, err := id.ParsePermissionID(req.PermissionID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission_id: %v", err))
	}

	if _, err := a.eng.Store().GetUser(ctx.Context(), userID); err != nil {
		return nil, mapError(err)
	}
	if _, err := a.eng.Store().GetPermission(ctx.Context(), permID); err != nil {
		return nil, mapError(err)
	}

	if err := a.eng.Store().GrantPermission(ctx.Context(), userID, permID); err != nil {
		return nil, mapError(err)
	}

	a.eng.InvalidateActor(ctx.Context(), userID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) revokePermission(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	userID, err := parseUserParam(ctx)
	if err != nil {
		return nil, err
	}

	permID, err := id.ParsePermissionID(ctx.Param("permissionId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid permission ID: %v", err))
	}

	if err := a.eng.Store().RevokePermission(ctx.Context(), userID, permID); err != nil {
		return nil, mapError(err)
	}

	a.eng.InvalidateActor(ctx.Context(), userID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func parseUserParam(ctx forge.Context) (id.UserID, error) {
	userID, err := id.ParseUserID(ctx.Param("userId"))
	if err != nil {
		return id.Nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}
	return userID, nil
}
