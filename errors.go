package verdict

import "errors"

var (
	// ErrAccessDenied is returned by Enforce when a check is denied.
	ErrAccessDenied = errors.New("verdict: access denied")

	// ErrResourceRequired is returned when an action needs a resource and
	// the caller did not supply one. This is a caller contract violation,
	// not a deny verdict.
	ErrResourceRequired = errors.New("verdict: resource is required for this action")

	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("verdict: user not found")

	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("verdict: role not found")

	// ErrPermissionNotFound is returned when a permission cannot be found.
	ErrPermissionNotFound = errors.New("verdict: permission not found")

	// ErrGrantNotFound is returned when a grant cannot be found.
	ErrGrantNotFound = errors.New("verdict: grant not found")

	// ErrDecisionLogNotFound is returned when a decision log entry cannot be found.
	ErrDecisionLogNotFound = errors.New("verdict: decision log entry not found")

	// ErrReservedRole is returned when trying to delete or rename a
	// reserved role through the management surface.
	ErrReservedRole = errors.New("verdict: role name is reserved")

	// ErrDuplicateRole is returned when a role name is already taken.
	ErrDuplicateRole = errors.New("verdict: role name already exists")

	// ErrDuplicatePermission is returned when a permission name is already taken.
	ErrDuplicatePermission = errors.New("verdict: permission name already exists")

	// ErrDuplicateUser is returned when a username is already taken.
	ErrDuplicateUser = errors.New("verdict: username already exists")

	// ErrInvalidAccessType is returned when a grant carries an unknown
	// access level.
	ErrInvalidAccessType = errors.New("verdict: invalid access type")
)
