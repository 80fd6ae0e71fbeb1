package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// AuditLog is an advisory business-audit entry written after a successful
// commit. It is observability data, not part of transactional correctness.
type AuditLog struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID    uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	Action     enums.AuditAction `gorm:"column:action;type:text;not null"`
	TargetType string            `gorm:"column:target_type;not null"`
	TargetID   uuid.UUID         `gorm:"column:target_id;type:uuid;not null"`
	Metadata   json.RawMessage   `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
