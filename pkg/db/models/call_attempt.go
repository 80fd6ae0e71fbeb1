package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// CallAttempt is an append-only record of one customer contact attempt.
// Rows are never mutated or deleted after creation.
type CallAttempt struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	AgentID   uuid.UUID         `gorm:"column:agent_id;type:uuid;not null"`
	Outcome   enums.CallOutcome `gorm:"column:outcome;type:text;not null"`
	Notes     *string           `gorm:"column:notes"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
