// Package mongo provides a MongoDB implementation of the Verdict composite
// store backed by Grove ORM. Migrate creates collection indexes instead of
// running schema migrations.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/actor"
	"github.com/trackline/verdict/decisionlog"
	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/permission"
	"github.com/trackline/verdict/role"
	"github.com/trackline/verdict/store"
)

// Collection name constants.
const (
	colUsers           = "verdict_users"
	colRoles           = "verdict_roles"
	colPermissions     = "verdict_permissions"
	colRolePermissions = "verdict_role_permissions"
	colUserRoles       = "verdict_user_roles"
	colUserPermissions = "verdict_user_permissions"
	colGrants          = "verdict_grants"
	colDecisionLogs    = "verdict_decision_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Verdict store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all verdict collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("verdict/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all verdict collections.
// The partial unique index on grants enforces at most one active grant per
// (user, scope) pair.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "department", Value: 1}}},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
		},
		colRoles: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colPermissions: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "action", Value: 1}}},
		},
		colRolePermissions: {
			{
				Keys:    bson.D{{Key: "role_id", Value: 1}, {Key: "permission_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "permission_id", Value: 1}}},
		},
		colUserRoles: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "role_id", Value: 1}}},
		},
		colUserPermissions: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "permission_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "permission_id", Value: 1}}},
		},
		colGrants: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "entity", Value: 1},
					{Key: "resource_id", Value: 1},
				},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"is_active": true}),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		colDecisionLogs: {
			{Keys: bson.D{{Key: "actor_id", Value: 1}}},
			{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "resource_id", Value: 1}}},
			{Keys: bson.D{{Key: "decision", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *actor.User) error {
	t := now()
	u.CreatedAt = t
	u.UpdatedAt = t
	m := userToModel(u)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("username %q: %w", u.Username, verdict.ErrDuplicateUser)
		}
		return fmt.Errorf("verdict: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*actor.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": userID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %s: %w", userID, verdict.ErrUserNotFound)
		}
		return nil, fmt.Errorf("verdict: get user: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*actor.User, error) {
	var m userModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"username": username}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("username %q: %w", username, verdict.ErrUserNotFound)
		}
		return nil, fmt.Errorf("verdict: get user by username: %w", err)
	}
	return userFromModel(&m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *actor.User) error {
	u.UpdatedAt = now()
	m := userToModel(u)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("username %q: %w", u.Username, verdict.ErrDuplicateUser)
		}
		return fmt.Errorf("verdict: update user: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("user %s: %w", u.ID, verdict.ErrUserNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID id.UserID) error {
	uk := userID.String()
	if _, err := s.mdb.NewDelete((*userRoleModel)(nil)).
		Many().
		Filter(bson.M{"user_id": uk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete user roles: %w", err)
	}
	if _, err := s.mdb.NewDelete((*userPermissionModel)(nil)).
		Many().
		Filter(bson.M{"user_id": uk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete user permissions: %w", err)
	}
	if _, err := s.mdb.NewDelete((*userModel)(nil)).
		Filter(bson.M{"_id": uk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter *actor.ListFilter) ([]*actor.User, error) {
	var models []userModel
	f := bson.M{}
	if filter != nil {
		if filter.IsActive != nil {
			f["is_active"] = *filter.IsActive
		}
		if filter.Department != "" {
			f["department"] = filter.Department
		}
		if filter.Search != "" {
			f["$or"] = bson.A{
				bson.M{"username": bson.M{"$regex": filter.Search, "$options": "i"}},
				bson.M{"display_name": bson.M{"$regex": filter.Search, "$options": "i"}},
			}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list users: %w", err)
	}
	result := make([]*actor.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountUsers(ctx context.Context, filter *actor.ListFilter) (int64, error) {
	f := bson.M{}
	if filter != nil {
		if filter.IsActive != nil {
			f["is_active"] = *filter.IsActive
		}
		if filter.Department != "" {
			f["department"] = filter.Department
		}
		if filter.Search != "" {
			f["$or"] = bson.A{
				bson.M{"username": bson.M{"$regex": filter.Search, "$options": "i"}},
				bson.M{"display_name": bson.M{"$regex": filter.Search, "$options": "i"}},
			}
		}
	}
	count, err := s.mdb.NewFind((*userModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count users: %w", err)
	}
	return count, nil
}

func (s *Store) AssignRole(ctx context.Context, userID id.UserID, roleID id.RoleID) error {
	m := &userRoleModel{
		UserID: userID.String(),
		RoleID: roleID.String(),
	}
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return nil // already assigned
		}
		return fmt.Errorf("verdict: assign role: %w", err)
	}
	return nil
}

func (s *Store) RevokeRole(ctx context.Context, userID id.UserID, roleID id.RoleID) error {
	_, err := s.mdb.NewDelete((*userRoleModel)(nil)).
		Filter(bson.M{"user_id": userID.String(), "role_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: revoke role: %w", err)
	}
	return nil
}

func (s *Store) ListUserRoles(ctx context.Context, userID id.UserID) ([]id.RoleID, error) {
	var models []userRoleModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"user_id": userID.String()}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list user roles: %w", err)
	}
	result := make([]id.RoleID, 0, len(models))
	for _, m := range models {
		rid, err := id.ParseRoleID(m.RoleID)
		if err == nil {
			result = append(result, rid)
		}
	}
	return result, nil
}

func (s *Store) ListUsersForRole(ctx context.Context, roleID id.RoleID) ([]*actor.User, error) {
	var bindings []userRoleModel
	if err := s.mdb.NewFind(&bindings).
		Filter(bson.M{"role_id": roleID.String()}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list users for role: %w", err)
	}
	if len(bindings) == 0 {
		return nil, nil
	}
	ids := make([]string, len(bindings))
	for i, b := range bindings {
		ids[i] = b.UserID
	}
	var models []userModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list users for role: %w", err)
	}
	result := make([]*actor.User, len(models))
	for i := range models {
		result[i] = userFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) GrantPermission(ctx context.Context, userID id.UserID, permID id.PermissionID) error {
	m := &userPermissionModel{
		UserID:       userID.String(),
		PermissionID: permID.String(),
	}
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return nil // already granted
		}
		return fmt.Errorf("verdict: grant permission: %w", err)
	}
	return nil
}

func (s *Store) RevokePermission(ctx context.Context, userID id.UserID, permID id.PermissionID) error {
	_, err := s.mdb.NewDelete((*userPermissionModel)(nil)).
		Filter(bson.M{"user_id": userID.String(), "permission_id": permID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: revoke permission: %w", err)
	}
	return nil
}

func (s *Store) ListRoleNamesForUser(ctx context.Context, userID id.UserID) ([]string, error) {
	var bindings []userRoleModel
	if err := s.mdb.NewFind(&bindings).
		Filter(bson.M{"user_id": userID.String()}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list role names: %w", err)
	}
	if len(bindings) == 0 {
		return nil, nil
	}
	ids := make([]string, len(bindings))
	for i, b := range bindings {
		ids[i] = b.RoleID
	}
	var roles []roleModel
	if err := s.mdb.NewFind(&roles).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list role names: %w", err)
	}
	names := make([]string, len(roles))
	for i := range roles {
		names[i] = roles[i].Name
	}
	return names, nil
}

func (s *Store) ListPermissionNamesForUser(ctx context.Context, userID id.UserID) ([]string, error) {
	uk := userID.String()
	permIDs := make(map[string]struct{})

	// Permissions through roles.
	var roleBindings []userRoleModel
	if err := s.mdb.NewFind(&roleBindings).
		Filter(bson.M{"user_id": uk}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list permission names: %w", err)
	}
	if len(roleBindings) > 0 {
		roleIDs := make([]string, len(roleBindings))
		for i, b := range roleBindings {
			roleIDs[i] = b.RoleID
		}
		var rolePerms []rolePermissionModel
		if err := s.mdb.NewFind(&rolePerms).
			Filter(bson.M{"role_id": bson.M{"$in": roleIDs}}).
			Scan(ctx); err != nil {
			return nil, fmt.Errorf("verdict: list permission names: %w", err)
		}
		for _, rp := range rolePerms {
			permIDs[rp.PermissionID] = struct{}{}
		}
	}

	// Direct bindings.
	var direct []userPermissionModel
	if err := s.mdb.NewFind(&direct).
		Filter(bson.M{"user_id": uk}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list permission names: %w", err)
	}
	for _, up := range direct {
		permIDs[up.PermissionID] = struct{}{}
	}

	if len(permIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(permIDs))
	for pid := range permIDs {
		ids = append(ids, pid)
	}
	var perms []permissionModel
	if err := s.mdb.NewFind(&perms).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list permission names: %w", err)
	}
	names := make([]string, len(perms))
	for i := range perms {
		names[i] = perms[i].Name
	}
	return names, nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	t := now()
	r.CreatedAt = t
	r.UpdatedAt = t
	m := roleToModel(r)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("role %q: %w", r.Name, verdict.ErrDuplicateRole)
		}
		return fmt.Errorf("verdict: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": roleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, verdict.ErrRoleNotFound)
		}
		return nil, fmt.Errorf("verdict: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %q: %w", name, verdict.ErrRoleNotFound)
		}
		return nil, fmt.Errorf("verdict: get role by name: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = now()
	m := roleToModel(r)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("role %q: %w", r.Name, verdict.ErrDuplicateRole)
		}
		return fmt.Errorf("verdict: update role: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("role %s: %w", r.ID, verdict.ErrRoleNotFound)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	rk := roleID.String()
	if _, err := s.mdb.NewDelete((*rolePermissionModel)(nil)).
		Many().
		Filter(bson.M{"role_id": rk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete role permissions: %w", err)
	}
	if _, err := s.mdb.NewDelete((*userRoleModel)(nil)).
		Many().
		Filter(bson.M{"role_id": rk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete role bindings: %w", err)
	}
	if _, err := s.mdb.NewDelete((*roleModel)(nil)).
		Filter(bson.M{"_id": rk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete role: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	f := bson.M{}
	if filter != nil && filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	f := bson.M{}
	if filter != nil && filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	count, err := s.mdb.NewFind((*roleModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) ListRolePermissions(ctx context.Context, roleID id.RoleID) ([]id.PermissionID, error) {
	var models []rolePermissionModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"role_id": roleID.String()}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list role permissions: %w", err)
	}
	result := make([]id.PermissionID, 0, len(models))
	for _, m := range models {
		pid, err := id.ParsePermissionID(m.PermissionID)
		if err == nil {
			result = append(result, pid)
		}
	}
	return result, nil
}

func (s *Store) AttachPermission(ctx context.Context, roleID id.RoleID, permID id.PermissionID) error {
	m := &rolePermissionModel{
		RoleID:       roleID.String(),
		PermissionID: permID.String(),
	}
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return nil // already attached
		}
		return fmt.Errorf("verdict: attach permission: %w", err)
	}
	return nil
}

func (s *Store) DetachPermission(ctx context.Context, roleID id.RoleID, permID id.PermissionID) error {
	_, err := s.mdb.NewDelete((*rolePermissionModel)(nil)).
		Filter(bson.M{"role_id": roleID.String(), "permission_id": permID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: detach permission: %w", err)
	}
	return nil
}

func (s *Store) SetRolePermissions(ctx context.Context, roleID id.RoleID, permIDs []id.PermissionID) error {
	// Delete all existing role permissions.
	_, err := s.mdb.NewDelete((*rolePermissionModel)(nil)).
		Many().
		Filter(bson.M{"role_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: clear role permissions: %w", err)
	}

	// Insert the replacement set.
	if len(permIDs) > 0 {
		models := make([]rolePermissionModel, len(permIDs))
		for i, pid := range permIDs {
			models[i] = rolePermissionModel{
				RoleID:       roleID.String(),
				PermissionID: pid.String(),
			}
		}
		if _, err := s.mdb.NewInsert(&models).Exec(ctx); err != nil {
			return fmt.Errorf("verdict: set role permissions: %w", err)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	t := now()
	p.CreatedAt = t
	p.UpdatedAt = t
	m := permissionToModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("permission %q: %w", p.Name, verdict.ErrDuplicatePermission)
		}
		return fmt.Errorf("verdict: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": permID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %s: %w", permID, verdict.ErrPermissionNotFound)
		}
		return nil, fmt.Errorf("verdict: get permission: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*permission.Permission, error) {
	var m permissionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("permission %q: %w", name, verdict.ErrPermissionNotFound)
		}
		return nil, fmt.Errorf("verdict: get permission by name: %w", err)
	}
	return permissionFromModel(&m), nil
}

func (s *Store) UpdatePermission(ctx context.Context, p *permission.Permission) error {
	p.UpdatedAt = now()
	m := permissionToModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: update permission: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("permission %s: %w", p.ID, verdict.ErrPermissionNotFound)
	}
	return nil
}

func (s *Store) DeletePermission(ctx context.Context, permID id.PermissionID) error {
	pk := permID.String()
	if _, err := s.mdb.NewDelete((*rolePermissionModel)(nil)).
		Many().
		Filter(bson.M{"permission_id": pk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete permission attachments: %w", err)
	}
	if _, err := s.mdb.NewDelete((*userPermissionModel)(nil)).
		Many().
		Filter(bson.M{"permission_id": pk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete permission bindings: %w", err)
	}
	if _, err := s.mdb.NewDelete((*permissionModel)(nil)).
		Filter(bson.M{"_id": pk}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete permission: %w", err)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	var models []permissionModel
	f := bson.M{}
	if filter != nil {
		if filter.Entity != "" {
			f["entity"] = filter.Entity
		}
		if filter.Action != "" {
			f["action"] = filter.Action
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list permissions: %w", err)
	}
	result := make([]*permission.Permission, len(models))
	for i := range models {
		result[i] = permissionFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	f := bson.M{}
	if filter != nil {
		if filter.Entity != "" {
			f["entity"] = filter.Entity
		}
		if filter.Action != "" {
			f["action"] = filter.Action
		}
		if filter.Search != "" {
			f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
		}
	}
	count, err := s.mdb.NewFind((*permissionModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count permissions: %w", err)
	}
	return count, nil
}

func (s *Store) ListPermissionsByRole(ctx context.Context, roleID id.RoleID) ([]*permission.Permission, error) {
	var bindings []rolePermissionModel
	if err := s.mdb.NewFind(&bindings).
		Filter(bson.M{"role_id": roleID.String()}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list permissions by role: %w", err)
	}
	if len(bindings) == 0 {
		return nil, nil
	}
	ids := make([]string, len(bindings))
	for i, b := range bindings {
		ids[i] = b.PermissionID
	}
	var models []permissionModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"_id": bson.M{"$in": ids}}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list permissions by role: %w", err)
	}
	result := make([]*permission.Permission, len(models))
	for i := range models {
		result[i] = permissionFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Grant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(ctx context.Context, g *grant.Grant) error {
	t := now()
	g.CreatedAt = t
	g.UpdatedAt = t

	// Deactivate any existing active grant for the same (user, scope) pair
	// so the partial unique index never rejects the insert.
	var prior []grantModel
	err := s.mdb.NewFind(&prior).
		Filter(bson.M{
			"user_id":     g.UserID.String(),
			"entity":      g.Entity,
			"resource_id": g.ResourceID,
			"is_active":   true,
		}).
		Scan(ctx)
	if err != nil && !isNoDocuments(err) {
		return fmt.Errorf("verdict: create grant: %w", err)
	}
	for i := range prior {
		prior[i].IsActive = false
		prior[i].UpdatedAt = t
		if _, err := s.mdb.NewUpdate(&prior[i]).
			Filter(bson.M{"_id": prior[i].ID}).
			Exec(ctx); err != nil {
			return fmt.Errorf("verdict: deactivate prior grant: %w", err)
		}
	}

	m := grantToModel(g)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: create grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*grant.Grant, error) {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
		}
		return nil, fmt.Errorf("verdict: get grant: %w", err)
	}
	return grantFromModel(&m), nil
}

func (s *Store) ActiveGrant(ctx context.Context, userID id.UserID, entity, resourceID string) (*grant.Grant, error) {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"user_id":     userID.String(),
			"entity":      entity,
			"resource_id": resourceID,
			"is_active":   true,
		}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("verdict: active grant: %w", err)
	}
	return grantFromModel(&m), nil
}

func (s *Store) ActiveGlobalGrant(ctx context.Context, userID id.UserID) (*grant.Grant, error) {
	return s.ActiveGrant(ctx, userID, "", "")
}

func (s *Store) DeactivateGrant(ctx context.Context, grantID id.GrantID) error {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
		}
		return fmt.Errorf("verdict: deactivate grant: %w", err)
	}
	if !m.IsActive {
		return nil
	}
	m.IsActive = false
	m.UpdatedAt = now()
	if _, err := s.mdb.NewUpdate(&m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
		return fmt.Errorf("verdict: deactivate grant: %w", err)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	var models []grantModel
	f := bson.M{}
	if filter != nil {
		if filter.UserID != nil {
			f["user_id"] = filter.UserID.String()
		}
		if filter.Entity != "" {
			f["entity"] = filter.Entity
		}
		if filter.ResourceID != "" {
			f["resource_id"] = filter.ResourceID
		}
		if filter.AccessType != "" {
			f["access_type"] = string(filter.AccessType)
		}
		if filter.IsActive != nil {
			f["is_active"] = *filter.IsActive
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list grants: %w", err)
	}
	result := make([]*grant.Grant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	f := bson.M{}
	if filter != nil {
		if filter.UserID != nil {
			f["user_id"] = filter.UserID.String()
		}
		if filter.Entity != "" {
			f["entity"] = filter.Entity
		}
		if filter.ResourceID != "" {
			f["resource_id"] = filter.ResourceID
		}
		if filter.AccessType != "" {
			f["access_type"] = string(filter.AccessType)
		}
		if filter.IsActive != nil {
			f["is_active"] = *filter.IsActive
		}
	}
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count grants: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteExpiredGrants(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*grantModel)(nil)).
		Many().
		Filter(bson.M{
			"expires_at": bson.M{
				"$ne": nil,
				"$lt": t,
			},
		}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: delete expired grants: %w", err)
	}
	return res.DeletedCount(), nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := decisionLogToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	var m decisionLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("decision log %s: %w", logID, verdict.ErrDecisionLogNotFound)
		}
		return nil, fmt.Errorf("verdict: get decision log: %w", err)
	}
	return decisionLogFromModel(&m), nil
}

func decisionLogFilter(filter *decisionlog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.ActorID != nil {
		f["actor_id"] = filter.ActorID.String()
	}
	if filter.Action != "" {
		f["action"] = filter.Action
	}
	if filter.Entity != "" {
		f["entity"] = filter.Entity
	}
	if filter.ResourceID != "" {
		f["resource_id"] = filter.ResourceID
	}
	if filter.Decision != "" {
		f["decision"] = filter.Decision
	}
	if filter.After != nil || filter.Before != nil {
		dateFilter := bson.M{}
		if filter.After != nil {
			dateFilter["$gte"] = *filter.After
		}
		if filter.Before != nil {
			dateFilter["$lte"] = *filter.Before
		}
		f["created_at"] = dateFilter
	}
	return f
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.mdb.NewFind(&models).
		Filter(decisionLogFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list decision logs: %w", err)
	}
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = decisionLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	count, err := s.mdb.NewFind((*decisionLogModel)(nil)).
		Filter(decisionLogFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: purge decision logs: %w", err)
	}
	return res.DeletedCount(), nil
}
