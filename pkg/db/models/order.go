package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// Order is the fulfillment aggregate root. Status mutates only through
// engine-sanctioned transitions; line items and totals are immutable after
// creation.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64             `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID  uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`

	SubtotalCents int `gorm:"column:subtotal_cents;not null"`
	TotalCents    int `gorm:"column:total_cents;not null"`

	CallAssignedToID *uuid.UUID `gorm:"column:call_assigned_to_id;type:uuid"`
	CallAssignedByID *uuid.UUID `gorm:"column:call_assigned_by_id;type:uuid"`
	CallAssignedAt   *time.Time `gorm:"column:call_assigned_at"`
	CallConfirmedAt  *time.Time `gorm:"column:call_confirmed_at"`
	CallNotes        *string    `gorm:"column:call_notes"`

	SelectedDeliveryAgentID *uuid.UUID `gorm:"column:selected_delivery_agent_id;type:uuid"`
	DeliveryAgentID         *uuid.UUID `gorm:"column:delivery_agent_id;type:uuid"`

	Notes *string `gorm:"column:notes"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
