// Package postgres provides a PostgreSQL implementation of the Verdict
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/trackline/verdict"
	"github.com/trackline/verdict/actor"
	"github.com/trackline/verdict/decisionlog"
	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/permission"
	"github.com/trackline/verdict/role"
	"github.com/trackline/verdict/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite Verdict store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("verdict: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("verdict: migration failed: %w", err)
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

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ──────────────────────────────────────────────────
// User operations
// ──────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *actor.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	m := userToModel(u)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", u.Username, verdict.ErrDuplicateUser)
		}
		return fmt.Errorf("verdict: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, userID id.UserID) (*actor.User, error) {
	m := new(userModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", userID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, verdict.ErrUserNotFound)
		}
		return nil, fmt.Errorf("verdict: get user: %w", err)
	}
	return userFromModel(m), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*actor.User, error) {
	m := new(userModel)
	err := s.pgdb.NewSelect(m).Where("username = ?", username).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("username %q: %w", username, verdict.ErrUserNotFound)
		}
		return nil, fmt.Errorf("verdict: get user by username: %w", err)
	}
	return userFromModel(m), nil
}

func (s *Store) UpdateUser(ctx context.Context, u *actor.User) error {
	u.UpdatedAt = time.Now().UTC()
	m := userToModel(u)
	_, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", u.Username, verdict.ErrDuplicateUser)
		}
		return fmt.Errorf("verdict: update user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID id.UserID) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("verdict: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	uk := userID.String()
	if _, err := tx.NewDelete((*userRoleModel)(nil)).Where("user_id = ?", uk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete user roles: %w", err)
	}
	if _, err := tx.NewDelete((*userPermissionModel)(nil)).Where("user_id = ?", uk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete user permissions: %w", err)
	}
	if _, err := tx.NewDelete((*userModel)(nil)).Where("id = ?", uk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verdict: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, filter *actor.ListFilter) ([]*actor.User, error) {
	var models []userModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Department != "" {
			q = q.Where("department = ?", filter.Department)
		}
		if filter.Search != "" {
			q = q.Where("(LOWER(username) LIKE LOWER(?) OR LOWER(display_name) LIKE LOWER(?))",
				"%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*userModel)(nil))
	if filter != nil {
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Department != "" {
			q = q.Where("department = ?", filter.Department)
		}
		if filter.Search != "" {
			q = q.Where("(LOWER(username) LIKE LOWER(?) OR LOWER(display_name) LIKE LOWER(?))",
				"%"+filter.Search+"%", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
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
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(user_id, role_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: assign role: %w", err)
	}
	return nil
}

func (s *Store) RevokeRole(ctx context.Context, userID id.UserID, roleID id.RoleID) error {
	_, err := s.pgdb.NewDelete((*userRoleModel)(nil)).
		Where("user_id = ?", userID.String()).
		Where("role_id = ?", roleID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: revoke role: %w", err)
	}
	return nil
}

func (s *Store) ListUserRoles(ctx context.Context, userID id.UserID) ([]id.RoleID, error) {
	var models []userRoleModel
	err := s.pgdb.NewSelect(&models).
		Where("user_id = ?", userID.String()).
		Scan(ctx)
	if err != nil {
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
	err := s.pgdb.NewSelect(&bindings).
		Where("role_id = ?", roleID.String()).
		Scan(ctx)
	if err != nil {
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
	err = s.pgdb.NewSelect(&models).
		Where("id IN (?)", ids).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
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
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(user_id, permission_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: grant permission: %w", err)
	}
	return nil
}

func (s *Store) RevokePermission(ctx context.Context, userID id.UserID, permID id.PermissionID) error {
	_, err := s.pgdb.NewDelete((*userPermissionModel)(nil)).
		Where("user_id = ?", userID.String()).
		Where("permission_id = ?", permID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: revoke permission: %w", err)
	}
	return nil
}

func (s *Store) ListRoleNamesForUser(ctx context.Context, userID id.UserID) ([]string, error) {
	var bindings []userRoleModel
	err := s.pgdb.NewSelect(&bindings).
		Where("user_id = ?", userID.String()).
		Scan(ctx)
	if err != nil {
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
	err = s.pgdb.NewSelect(&roles).
		Where("id IN (?)", ids).
		Scan(ctx)
	if err != nil {
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
	err := s.pgdb.NewSelect(&roleBindings).Where("user_id = ?", uk).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("verdict: list permission names: %w", err)
	}
	if len(roleBindings) > 0 {
		roleIDs := make([]string, len(roleBindings))
		for i, b := range roleBindings {
			roleIDs[i] = b.RoleID
		}
		var rolePerms []rolePermissionModel
		err = s.pgdb.NewSelect(&rolePerms).Where("role_id IN (?)", roleIDs).Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("verdict: list permission names: %w", err)
		}
		for _, rp := range rolePerms {
			permIDs[rp.PermissionID] = struct{}{}
		}
	}

	// Direct bindings.
	var direct []userPermissionModel
	err = s.pgdb.NewSelect(&direct).Where("user_id = ?", uk).Scan(ctx)
	if err != nil {
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
	err = s.pgdb.NewSelect(&perms).Where("id IN (?)", ids).Scan(ctx)
	if err != nil {
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
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	m := roleToModel(r)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role %q: %w", r.Name, verdict.ErrDuplicateRole)
		}
		return fmt.Errorf("verdict: create role: %w", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", roleID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", roleID, verdict.ErrRoleNotFound)
		}
		return nil, fmt.Errorf("verdict: get role: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %q: %w", name, verdict.ErrRoleNotFound)
		}
		return nil, fmt.Errorf("verdict: get role by name: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = time.Now().UTC()
	m := roleToModel(r)
	_, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("role %q: %w", r.Name, verdict.ErrDuplicateRole)
		}
		return fmt.Errorf("verdict: update role: %w", err)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("verdict: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	rk := roleID.String()
	if _, err := tx.NewDelete((*rolePermissionModel)(nil)).Where("role_id = ?", rk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete role permissions: %w", err)
	}
	if _, err := tx.NewDelete((*userRoleModel)(nil)).Where("role_id = ?", rk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete role bindings: %w", err)
	}
	if _, err := tx.NewDelete((*roleModel)(nil)).Where("id = ?", rk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete role: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verdict: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*roleModel)(nil))
	if filter != nil && filter.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) ListRolePermissions(ctx context.Context, roleID id.RoleID) ([]id.PermissionID, error) {
	var models []rolePermissionModel
	err := s.pgdb.NewSelect(&models).
		Where("role_id = ?", roleID.String()).
		Scan(ctx)
	if err != nil {
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
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(role_id, permission_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: attach permission: %w", err)
	}
	return nil
}

func (s *Store) DetachPermission(ctx context.Context, roleID id.RoleID, permID id.PermissionID) error {
	_, err := s.pgdb.NewDelete((*rolePermissionModel)(nil)).
		Where("role_id = ?", roleID.String()).
		Where("permission_id = ?", permID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: detach permission: %w", err)
	}
	return nil
}

func (s *Store) SetRolePermissions(ctx context.Context, roleID id.RoleID, permIDs []id.PermissionID) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("verdict: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	// Delete existing permissions for this role.
	_, err = tx.NewDelete((*rolePermissionModel)(nil)).
		Where("role_id = ?", roleID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: clear role permissions: %w", err)
	}

	// Insert new permissions.
	if len(permIDs) > 0 {
		models := make([]rolePermissionModel, len(permIDs))
		for i, pid := range permIDs {
			models[i] = rolePermissionModel{
				RoleID:       roleID.String(),
				PermissionID: pid.String(),
			}
		}
		_, err = tx.NewInsert(&models).Exec(ctx)
		if err != nil {
			return fmt.Errorf("verdict: set role permissions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verdict: commit tx: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Permission operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(ctx context.Context, p *permission.Permission) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m := permissionToModel(p)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("permission %q: %w", p.Name, verdict.ErrDuplicatePermission)
		}
		return fmt.Errorf("verdict: create permission: %w", err)
	}
	return nil
}

func (s *Store) GetPermission(ctx context.Context, permID id.PermissionID) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", permID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission %s: %w", permID, verdict.ErrPermissionNotFound)
		}
		return nil, fmt.Errorf("verdict: get permission: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) GetPermissionByName(ctx context.Context, name string) (*permission.Permission, error) {
	m := new(permissionModel)
	err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("permission %q: %w", name, verdict.ErrPermissionNotFound)
		}
		return nil, fmt.Errorf("verdict: get permission by name: %w", err)
	}
	return permissionFromModel(m), nil
}

func (s *Store) UpdatePermission(ctx context.Context, p *permission.Permission) error {
	p.UpdatedAt = time.Now().UTC()
	m := permissionToModel(p)
	_, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: update permission: %w", err)
	}
	return nil
}

func (s *Store) DeletePermission(ctx context.Context, permID id.PermissionID) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("verdict: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	pk := permID.String()
	if _, err := tx.NewDelete((*rolePermissionModel)(nil)).Where("permission_id = ?", pk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete permission attachments: %w", err)
	}
	if _, err := tx.NewDelete((*userPermissionModel)(nil)).Where("permission_id = ?", pk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete permission bindings: %w", err)
	}
	if _, err := tx.NewDelete((*permissionModel)(nil)).Where("id = ?", pk).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete permission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verdict: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListPermissions(ctx context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	var models []permissionModel
	q := s.pgdb.NewSelect(&models).OrderExpr("name ASC")
	if filter != nil {
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*permissionModel)(nil))
	if filter != nil {
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count permissions: %w", err)
	}
	return count, nil
}

func (s *Store) ListPermissionsByRole(ctx context.Context, roleID id.RoleID) ([]*permission.Permission, error) {
	var bindings []rolePermissionModel
	err := s.pgdb.NewSelect(&bindings).
		Where("role_id = ?", roleID.String()).
		Scan(ctx)
	if err != nil {
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
	err = s.pgdb.NewSelect(&models).
		Where("id IN (?)", ids).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
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
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("verdict: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	// Deactivate any existing active grant for the same (user, scope) pair
	// so the partial unique index never rejects the insert.
	_, err = tx.NewUpdate((*grantModel)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", now).
		Where("user_id = ?", g.UserID.String()).
		Where("entity = ?", g.Entity).
		Where("resource_id = ?", g.ResourceID).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: deactivate prior grant: %w", err)
	}

	if _, err := tx.NewInsert(grantToModel(g)).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: create grant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("verdict: commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*grant.Grant, error) {
	m := new(grantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", grantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
		}
		return nil, fmt.Errorf("verdict: get grant: %w", err)
	}
	return grantFromModel(m), nil
}

func (s *Store) ActiveGrant(ctx context.Context, userID id.UserID, entity, resourceID string) (*grant.Grant, error) {
	m := new(grantModel)
	err := s.pgdb.NewSelect(m).
		Where("user_id = ?", userID.String()).
		Where("entity = ?", entity).
		Where("resource_id = ?", resourceID).
		Where("is_active = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("verdict: active grant: %w", err)
	}
	return grantFromModel(m), nil
}

func (s *Store) ActiveGlobalGrant(ctx context.Context, userID id.UserID) (*grant.Grant, error) {
	return s.ActiveGrant(ctx, userID, "", "")
}

func (s *Store) DeactivateGrant(ctx context.Context, grantID id.GrantID) error {
	res, err := s.pgdb.NewUpdate((*grantModel)(nil)).
		Set("is_active = ?", false).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", grantID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: deactivate grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	var models []grantModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.UserID != nil {
			q = q.Where("user_id = ?", filter.UserID.String())
		}
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.AccessType != "" {
			q = q.Where("access_type = ?", string(filter.AccessType))
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*grantModel)(nil))
	if filter != nil {
		if filter.UserID != nil {
			q = q.Where("user_id = ?", filter.UserID.String())
		}
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.AccessType != "" {
			q = q.Where("access_type = ?", string(filter.AccessType))
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count grants: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteExpiredGrants(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: delete expired grants: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m := decisionLogToModel(e)
	_, err := s.pgdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	m := new(decisionLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision log %s: %w", logID, verdict.ErrDecisionLogNotFound)
		}
		return nil, fmt.Errorf("verdict: get decision log: %w", err)
	}
	return decisionLogFromModel(m), nil
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.ActorID != nil {
			q = q.Where("actor_id = ?", filter.ActorID.String())
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*decisionLogModel)(nil))
	if filter != nil {
		if filter.ActorID != nil {
			q = q.Where("actor_id = ?", filter.ActorID.String())
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Entity != "" {
			q = q.Where("entity = ?", filter.Entity)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at >= ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at <= ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("created_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: purge decision logs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
