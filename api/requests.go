package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// ResourcePayload carries the target record's state for a check.
type ResourcePayload struct {
	ID              string         `json:"id,omitempty" description:"Resource identifier"`
	CreatedBy       string         `json:"created_by,omitempty" description:"Record owner user ID"`
	Confirmed       bool           `json:"confirmed,omitempty" description:"Confirmation lock flag"`
	ConfirmedBy     string         `json:"confirmed_by,omitempty" description:"Confirming user ID"`
	AssignedTo      string         `json:"assigned_to,omitempty" description:"Designated actor user ID"`
	ParentID        string         `json:"parent_id,omitempty" description:"Owning record identifier"`
	ParentConfirmed bool           `json:"parent_confirmed,omitempty" description:"Parent confirmation lock flag"`
	Dependents      int            `json:"dependents,omitempty" description:"Number of dependent rows"`
	RoleName        string         `json:"role_name,omitempty" description:"Target role name when entity is role"`
	Attributes      map[string]any `json:"attributes,omitempty" description:"Additional resource attributes"`
}

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	ActorID  string           `json:"actor_id" description:"Acting user ID"`
	Action   string           `json:"action" description:"Action name"`
	Entity   string           `json:"entity" description:"Target entity type"`
	Resource *ResourcePayload `json:"resource,omitempty" description:"Target record state"`
	Context  map[string]any   `json:"context,omitempty" description:"Additional context attributes"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of authorization checks"`
}

// ──────────────────────────────────────────────────
// User requests
// ──────────────────────────────────────────────────

// CreateUserRequest is the body for creating a user.
type CreateUserRequest struct {
	Username    string         `json:"username" description:"Unique login name"`
	DisplayName string         `json:"display_name,omitempty" description:"Human-readable name"`
	Department  string         `json:"department,omitempty" description:"Organizational department"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateUserRequest is the body for updating a user.
type UpdateUserRequest struct {
	Username    string         `json:"username,omitempty" description:"Unique login name"`
	DisplayName string         `json:"display_name,omitempty" description:"Human-readable name"`
	Department  string         `json:"department,omitempty" description:"Organizational department"`
	IsActive    *bool          `json:"is_active,omitempty" description:"Active flag"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetUserRequest is the path parameter for getting a user.
type GetUserRequest struct {
	UserID string `path:"userId" description:"User ID"`
}

// ListUsersRequest holds query parameters for listing users.
type ListUsersRequest struct {
	Department string `query:"department" description:"Filter by department"`
	IsActive   *bool  `query:"is_active" description:"Filter by active flag"`
	Search     string `query:"search" description:"Search by username or display name"`
	Limit      int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// AssignRoleRequest is the body for assigning a role to a user.
type AssignRoleRequest struct {
	RoleID string `json:"role_id" description:"Role ID to assign"`
}

// GrantPermissionRequest is the body for binding a permission directly
// to a user.
type GrantPermissionRequest struct {
	PermissionID string `json:"permission_id" description:"Permission ID to grant"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name        string         `json:"name" description:"Role name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateRoleRequest is the body for updating a role.
type UpdateRoleRequest struct {
	Name        string         `json:"name,omitempty" description:"Role name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetRoleRequest is the path parameter for getting a role.
type GetRoleRequest struct {
	RoleID string `path:"roleId" description:"Role ID"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// AttachPermissionRequest is the body for attaching a permission to a role.
type AttachPermissionRequest struct {
	PermissionID string `json:"permission_id" description:"Permission ID to attach"`
}

// SetRolePermissionsRequest replaces a role's permission set.
type SetRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" description:"Replacement permission ID set"`
}

// ──────────────────────────────────────────────────
// Permission requests
// ──────────────────────────────────────────────────

// CreatePermissionRequest is the body for creating a permission.
type CreatePermissionRequest struct {
	Entity      string `json:"entity" description:"Target entity type"`
	Action      string `json:"action" description:"Action name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// GetPermissionRequest is the path parameter for getting a permission.
type GetPermissionRequest struct {
	PermissionID string `path:"permissionId" description:"Permission ID"`
}

// ListPermissionsRequest holds query parameters.
type ListPermissionsRequest struct {
	Entity string `query:"entity" description:"Filter by entity type"`
	Action string `query:"action" description:"Filter by action"`
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Grant requests
// ──────────────────────────────────────────────────

// CreateGrantRequest is the body for creating an access grant.
type CreateGrantRequest struct {
	UserID     string         `json:"user_id" description:"Covered user ID"`
	Entity     string         `json:"entity,omitempty" description:"Scope entity type (empty = global)"`
	ResourceID string         `json:"resource_id,omitempty" description:"Scope resource ID (empty = global)"`
	AccessType string         `json:"access_type" description:"Access level (full, read_only, incidents_only)"`
	ExpiresAt  string         `json:"expires_at,omitempty" description:"Expiration time (RFC3339)"`
	GrantedBy  string         `json:"granted_by,omitempty" description:"Granting user ID"`
	Metadata   map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetGrantRequest is the path parameter for getting a grant.
type GetGrantRequest struct {
	GrantID string `path:"grantId" description:"Grant ID"`
}

// ListGrantsRequest holds query parameters for listing grants.
type ListGrantsRequest struct {
	UserID     string `query:"user_id" description:"Filter by covered user"`
	Entity     string `query:"entity" description:"Filter by scope entity"`
	ResourceID string `query:"resource_id" description:"Filter by scope resource"`
	AccessType string `query:"access_type" description:"Filter by access level"`
	IsActive   *bool  `query:"is_active" description:"Filter by active flag"`
	Limit      int    `query:"limit" description:"Maximum results"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Decision log requests
// ──────────────────────────────────────────────────

// ListDecisionLogsRequest holds query parameters for the audit log.
type ListDecisionLogsRequest struct {
	ActorID    string `query:"actor_id" description:"Filter by acting user"`
	Action     string `query:"action" description:"Filter by action"`
	Entity     string `query:"entity" description:"Filter by entity type"`
	ResourceID string `query:"resource_id" description:"Filter by resource ID"`
	Decision   string `query:"decision" description:"Filter by decision code"`
	After      string `query:"after" description:"Only entries at or after this time (RFC3339)"`
	Before     string `query:"before" description:"Only entries at or before this time (RFC3339)"`
	Limit      int    `query:"limit" description:"Maximum results"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// PurgeDecisionLogsRequest is the body for purging old audit entries.
type PurgeDecisionLogsRequest struct {
	Before string `json:"before" description:"Delete entries created before this time (RFC3339)"`
}
