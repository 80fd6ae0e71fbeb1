package orders

import (
	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// OrderFilters narrows order list queries.
type OrderFilters struct {
	Status           *enums.OrderStatus
	CustomerID       *uuid.UUID
	CallAssignedToID *uuid.UUID
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// CreateOrderInput captures a new order with its immutable line items.
type CreateOrderInput struct {
	Actor      workflow.Actor
	CustomerID uuid.UUID
	Notes      *string
	Items      []CreateOrderItemInput
}

// CreateOrderItemInput is one order line captured at creation time.
type CreateOrderItemInput struct {
	ProductID  uuid.UUID
	Title      string
	Qty        int
	PriceCents int
}

// AssignCallAgentInput names the call agent a super admin assigns.
type AssignCallAgentInput struct {
	OrderID uuid.UUID
	Actor   workflow.Actor
	AgentID uuid.UUID
}

// LogCallAttemptInput records one customer contact attempt.
type LogCallAttemptInput struct {
	OrderID uuid.UUID
	Actor   workflow.Actor
	Outcome enums.CallOutcome
	Notes   *string
}

// SelectDeliveryAgentInput names the delivery agent selected for a packed order.
type SelectDeliveryAgentInput struct {
	OrderID uuid.UUID
	Actor   workflow.Actor
	AgentID uuid.UUID
}

// AssignDeliveryAgentInput turns a selection into a binding assignment. An
// explicit AgentID differing from the selection requires the override fields.
type AssignDeliveryAgentInput struct {
	OrderID        uuid.UUID
	Actor          workflow.Actor
	AgentID        *uuid.UUID
	Override       bool
	OverrideReason string
}

// FastForwardInput advances an order to its canonical next status. Reason is
// recorded for audit only and carries no semantic weight.
type FastForwardInput struct {
	OrderID uuid.UUID
	Actor   workflow.Actor
	Reason  string
}

// UpdateStatusInput requests an explicit transition to a named status.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Actor   workflow.Actor
	Status  enums.OrderStatus
	Notes   *string
}

// CancelOrderInput terminates an order that has not gone out for delivery.
type CancelOrderInput struct {
	OrderID uuid.UUID
	Actor   workflow.Actor
	Notes   *string
}
