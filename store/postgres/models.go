package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/trackline/verdict/actor"
	"github.com/trackline/verdict/decisionlog"
	"github.com/trackline/verdict/grant"
	"github.com/trackline/verdict/id"
	"github.com/trackline/verdict/permission"
	"github.com/trackline/verdict/role"
)

// ──────────────────────────────────────────────────
// User model
// ──────────────────────────────────────────────────

type userModel struct {
	grove.BaseModel `grove:"table:verdict_users"`
	ID              string         `grove:"id,pk"`
	Username        string         `grove:"username,notnull"`
	DisplayName     string         `grove:"display_name"`
	Department      string         `grove:"department"`
	IsActive        bool           `grove:"is_active,notnull"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func userToModel(u *actor.User) *userModel {
	return &userModel{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Department:  u.Department,
		IsActive:    u.IsActive,
		Metadata:    u.Metadata,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func userFromModel(m *userModel) *actor.User {
	uid, _ := id.ParseUserID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &actor.User{
		ID:          uid,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Department:  m.Department,
		IsActive:    m.IsActive,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:verdict_roles"`
	ID              string         `grove:"id,pk"`
	Name            string         `grove:"name,notnull"`
	Description     string         `grove:"description"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) *roleModel {
	return &roleModel{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &role.Role{
		ID:          rid,
		Name:        m.Name,
		Description: m.Description,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	grove.BaseModel `grove:"table:verdict_permissions"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Entity          string    `grove:"entity,notnull"`
	Action          string    `grove:"action,notnull"`
	Description     string    `grove:"description"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func permissionToModel(p *permission.Permission) *permissionModel {
	return &permissionModel{
		ID:          p.ID.String(),
		Name:        p.Name,
		Entity:      p.Entity,
		Action:      p.Action,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func permissionFromModel(m *permissionModel) *permission.Permission {
	pid, _ := id.ParsePermissionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &permission.Permission{
		ID:          pid,
		Name:        m.Name,
		Entity:      m.Entity,
		Action:      m.Action,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Junction models
// ──────────────────────────────────────────────────

type rolePermissionModel struct {
	grove.BaseModel `grove:"table:verdict_role_permissions"`
	RoleID          string `grove:"role_id,pk"`
	PermissionID    string `grove:"permission_id,pk"`
}

type userRoleModel struct {
	grove.BaseModel `grove:"table:verdict_user_roles"`
	UserID          string `grove:"user_id,pk"`
	RoleID          string `grove:"role_id,pk"`
}

type userPermissionModel struct {
	grove.BaseModel `grove:"table:verdict_user_permissions"`
	UserID          string `grove:"user_id,pk"`
	PermissionID    string `grove:"permission_id,pk"`
}

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:verdict_grants"`
	ID              string         `grove:"id,pk"`
	UserID          string         `grove:"user_id,notnull"`
	Entity          string         `grove:"entity"`
	ResourceID      string         `grove:"resource_id"`
	AccessType      string         `grove:"access_type,notnull"`
	IsActive        bool           `grove:"is_active,notnull"`
	ExpiresAt       *time.Time     `grove:"expires_at"`
	GrantedBy       string         `grove:"granted_by"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
	UpdatedAt       time.Time      `grove:"updated_at,notnull"`
}

func grantToModel(g *grant.Grant) *grantModel {
	return &grantModel{
		ID:         g.ID.String(),
		UserID:     g.UserID.String(),
		Entity:     g.Entity,
		ResourceID: g.ResourceID,
		AccessType: string(g.AccessType),
		IsActive:   g.IsActive,
		ExpiresAt:  g.ExpiresAt,
		GrantedBy:  g.GrantedBy.String(),
		Metadata:   g.Metadata,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

func grantFromModel(m *grantModel) *grant.Grant {
	gid, _ := id.ParseGrantID(m.ID)    //nolint:errcheck // stored IDs are always valid
	uid, _ := id.ParseUserID(m.UserID) //nolint:errcheck // stored IDs are always valid
	g := &grant.Grant{
		ID:         gid,
		UserID:     uid,
		Entity:     m.Entity,
		ResourceID: m.ResourceID,
		AccessType: grant.AccessType(m.AccessType),
		IsActive:   m.IsActive,
		ExpiresAt:  m.ExpiresAt,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.GrantedBy != "" {
		gb, err := id.ParseUserID(m.GrantedBy)
		if err == nil {
			g.GrantedBy = gb
		}
	}
	return g
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:verdict_decision_logs"`
	ID              string         `grove:"id,pk"`
	ActorID         string         `grove:"actor_id,notnull"`
	Action          string         `grove:"action,notnull"`
	Entity          string         `grove:"entity,notnull"`
	ResourceID      string         `grove:"resource_id"`
	Decision        string         `grove:"decision,notnull"`
	Reason          string         `grove:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	RequestIP       string         `grove:"request_ip"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) *decisionLogModel {
	return &decisionLogModel{
		ID:         e.ID.String(),
		ActorID:    e.ActorID.String(),
		Action:     e.Action,
		Entity:     e.Entity,
		ResourceID: e.ResourceID,
		Decision:   e.Decision,
		Reason:     e.Reason,
		EvalTimeNs: e.EvalTimeNs,
		RequestIP:  e.RequestIP,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func decisionLogFromModel(m *decisionLogModel) *decisionlog.Entry {
	lid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseUserID(m.ActorID)   //nolint:errcheck // stored IDs are always valid
	return &decisionlog.Entry{
		ID:         lid,
		ActorID:    aid,
		Action:     m.Action,
		Entity:     m.Entity,
		ResourceID: m.ResourceID,
		Decision:   m.Decision,
		Reason:     m.Reason,
		EvalTimeNs: m.EvalTimeNs,
		RequestIP:  m.RequestIP,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}
