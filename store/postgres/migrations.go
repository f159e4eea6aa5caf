package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Verdict store (PostgreSQL).
var Migrations = migrate.NewGroup("verdict")

const usersTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_users (
    id              TEXT PRIMARY KEY,
    username        TEXT NOT NULL,
    display_name    TEXT NOT NULL DEFAULT '',
    department      TEXT NOT NULL DEFAULT '',
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(username)
);

CREATE INDEX IF NOT EXISTS idx_verdict_users_department ON verdict_users (department);
CREATE INDEX IF NOT EXISTS idx_verdict_users_active ON verdict_users (is_active);
`

const rolesTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_roles (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(name)
);
`

const permissionsTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_permissions (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    entity          TEXT NOT NULL,
    action          TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(name)
);

CREATE INDEX IF NOT EXISTS idx_verdict_permissions_entity ON verdict_permissions (entity, action);
`

const rolePermissionsTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_role_permissions (
    role_id         TEXT NOT NULL REFERENCES verdict_roles (id) ON DELETE CASCADE,
    permission_id   TEXT NOT NULL REFERENCES verdict_permissions (id) ON DELETE CASCADE,

    PRIMARY KEY (role_id, permission_id)
);
`

const userRolesTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_user_roles (
    user_id         TEXT NOT NULL REFERENCES verdict_users (id) ON DELETE CASCADE,
    role_id         TEXT NOT NULL REFERENCES verdict_roles (id) ON DELETE CASCADE,

    PRIMARY KEY (user_id, role_id)
);

CREATE INDEX IF NOT EXISTS idx_verdict_user_roles_role ON verdict_user_roles (role_id);
`

const userPermissionsTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_user_permissions (
    user_id         TEXT NOT NULL REFERENCES verdict_users (id) ON DELETE CASCADE,
    permission_id   TEXT NOT NULL REFERENCES verdict_permissions (id) ON DELETE CASCADE,

    PRIMARY KEY (user_id, permission_id)
);
`

const grantsTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_grants (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    entity          TEXT NOT NULL DEFAULT '',
    resource_id     TEXT NOT NULL DEFAULT '',
    access_type     TEXT NOT NULL,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at      TIMESTAMPTZ,
    granted_by      TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_verdict_grants_user ON verdict_grants (user_id);
CREATE INDEX IF NOT EXISTS idx_verdict_grants_expiry ON verdict_grants (expires_at) WHERE expires_at IS NOT NULL;

-- One active grant per (user, scope) pair.
CREATE UNIQUE INDEX IF NOT EXISTS idx_verdict_grants_active_scope
    ON verdict_grants (user_id, entity, resource_id) WHERE is_active;
`

const decisionLogsTableSQL = `
CREATE TABLE IF NOT EXISTS verdict_decision_logs (
    id              TEXT PRIMARY KEY,
    actor_id        TEXT NOT NULL,
    action          TEXT NOT NULL,
    entity          TEXT NOT NULL,
    resource_id     TEXT NOT NULL DEFAULT '',
    decision        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    BIGINT NOT NULL DEFAULT 0,
    request_ip      TEXT NOT NULL DEFAULT '',
    metadata        JSONB NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_verdict_decision_logs_actor ON verdict_decision_logs (actor_id, created_at);
CREATE INDEX IF NOT EXISTS idx_verdict_decision_logs_entity ON verdict_decision_logs (entity, action);
CREATE INDEX IF NOT EXISTS idx_verdict_decision_logs_created ON verdict_decision_logs (created_at);
`

// schemaSQL lists every table's DDL in dependency order.
var schemaSQL = []string{
	usersTableSQL,
	rolesTableSQL,
	permissionsTableSQL,
	rolePermissionsTableSQL,
	userRolesTableSQL,
	userPermissionsTableSQL,
	grantsTableSQL,
	decisionLogsTableSQL,
}

func init() {
	register := func(name, version, up, table string) *migrate.Migration {
		return &migrate.Migration{
			Name:    name,
			Version: version,
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, up)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS `+table)
				return err
			},
		}
	}

	Migrations.MustRegister(
		register("create_users", "20240101000001", usersTableSQL, "verdict_users"),
		register("create_roles", "20240101000002", rolesTableSQL, "verdict_roles"),
		register("create_permissions", "20240101000003", permissionsTableSQL, "verdict_permissions"),
		register("create_role_permissions", "20240101000004", rolePermissionsTableSQL, "verdict_role_permissions"),
		register("create_user_roles", "20240101000005", userRolesTableSQL, "verdict_user_roles"),
		register("create_user_permissions", "20240101000006", userPermissionsTableSQL, "verdict_user_permissions"),
		register("create_grants", "20240101000007", grantsTableSQL, "verdict_grants"),
		register("create_decision_logs", "20240101000008", decisionLogsTableSQL, "verdict_decision_logs"),
	)
}
