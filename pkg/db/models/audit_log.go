package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/davegutierrez/shoplite-backend/pkg/enums"
)

// AuditLog records who did what. Writes are best-effort after the business
// transaction commits; a failed audit insert never fails the operation.
type AuditLog struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorUserID uuid.UUID         `gorm:"column:actor_user_id;type:uuid;not null;index"`
	Action      enums.AuditAction `gorm:"column:action;type:text;not null"`
	EntityType  string            `gorm:"column:entity_type;type:text;not null"`
	EntityID    uuid.UUID         `gorm:"column:entity_id;type:uuid;not null;index"`
	Detail      json.RawMessage   `gorm:"column:detail;type:jsonb"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
