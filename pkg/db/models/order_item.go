package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is an immutable order line captured at creation time.
type OrderItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Title      string    `gorm:"column:title;not null"`
	Qty        int       `gorm:"column:qty;not null"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	TotalCents int       `gorm:"column:total_cents;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
