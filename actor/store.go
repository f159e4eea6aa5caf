package actor

import (
	"context"

	"github.com/trackline/verdict/id"
)

// Store defines persistence operations for users and their role and
// permission bindings.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, u *User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID id.UserID) (*User, error)

	// GetUserByUsername retrieves a user by their unique username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpdateUser persists changes to a user.
	UpdateUser(ctx context.Context, u *User) error

	// DeleteUser removes a user and all their bindings.
	DeleteUser(ctx context.Context, userID id.UserID) error

	// ListUsers returns users matching the filter.
	ListUsers(ctx context.Context, filter *ListFilter) ([]*User, error)

	// CountUsers returns the number of users matching the filter.
	CountUsers(ctx context.Context, filter *ListFilter) (int64, error)

	// AssignRole binds a role to a user. Assigning an already-held role is a no-op.
	AssignRole(ctx context.Context, userID id.UserID, roleID id.RoleID) error

	// RevokeRole removes a role binding from a user.
	RevokeRole(ctx context.Context, userID id.UserID, roleID id.RoleID) error

	// ListUserRoles returns role IDs bound to a user.
	ListUserRoles(ctx context.Context, userID id.UserID) ([]id.RoleID, error)

	// ListUsersForRole returns all users holding the given role.
	ListUsersForRole(ctx context.Context, roleID id.RoleID) ([]*User, error)

	// GrantPermission binds a permission directly to a user, bypassing roles.
	GrantPermission(ctx context.Context, userID id.UserID, permID id.PermissionID) error

	// RevokePermission removes a direct permission binding from a user.
	RevokePermission(ctx context.Context, userID id.UserID, permID id.PermissionID) error

	// ListRoleNamesForUser returns the names of all roles bound to a user.
	ListRoleNamesForUser(ctx context.Context, userID id.UserID) ([]string, error)

	// ListPermissionNamesForUser returns the names of all permissions a user
	// holds, through roles and direct bindings combined.
	ListPermissionNamesForUser(ctx context.Context, userID id.UserID) ([]string, error)
}
