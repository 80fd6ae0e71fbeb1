package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// OrderStatusChange is the append-only audit trail of status transitions.
// Exactly one row exists per committed status mutation; FromStatus is null
// only for the creation event.
type OrderStatusChange struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	FromStatus  *enums.OrderStatus `gorm:"column:from_status;type:text"`
	ToStatus    enums.OrderStatus  `gorm:"column:to_status;type:text;not null"`
	ChangedByID uuid.UUID          `gorm:"column:changed_by_id;type:uuid;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
