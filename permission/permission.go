// Package permission defines the Permission entity and its store interface.
package permission

import (
	"time"

	"github.com/trackline/verdict/id"
)

// Permission represents a specific action allowed on an entity type.
// Names follow the "<entity>.<action>" convention, e.g. "incident.view".
type Permission struct {
	ID          id.PermissionID `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Entity      string          `json:"entity" db:"entity"`
	Action      string          `json:"action" db:"action"`
	Description string          `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Name builds the canonical permission name for an entity/action pair.
func Name(entity, action string) string {
	return entity + "." + action
}

// ListFilter contains filters for listing permissions.
type ListFilter struct {
	Entity string `json:"entity,omitempty"`
	Action string `json:"action,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
