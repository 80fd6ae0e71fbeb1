package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

// Operation names a privileged workflow entry point for role gating.
type Operation string

const (
	OpAssignCallAgent     Operation = "assign_call_agent"
	OpLogCallAttempt      Operation = "log_call_attempt"
	OpSelectDeliveryAgent Operation = "select_delivery_agent"
	OpAssignDeliveryAgent Operation = "assign_delivery_agent"
	OpFastForward         Operation = "fast_forward"
	OpUpdateStatus        Operation = "update_status"
)

// Actor is the already-authenticated principal requesting a transition. The
// engine consults only the role; authentication happened upstream.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// AgentRecord is a caller-resolved view of a referenced agent. A nil record
// in Facts means the id did not resolve.
type AgentRecord struct {
	ID     uuid.UUID
	Role   enums.UserRole
	Active bool
}

// Facts carries the caller-resolved business facts the prerequisite checks
// consult. The engine never queries stores itself.
type Facts struct {
	HasConfirmedCallAttempt bool
	CallAgent               *AgentRecord
	DeliveryAgent           *AgentRecord
}

// Context is the full input for one transition decision.
type Context struct {
	Actor Actor
	Op    Operation
	Facts Facts

	// AgentID is the explicit agent reference supplied by the request, when
	// the operation names one (call agent or delivery agent).
	AgentID *uuid.UUID

	// Override and OverrideReason gate delivery assignment when the explicit
	// agent differs from the selected one.
	Override       bool
	OverrideReason string

	Notes *string
	Now   time.Time
}

// OrderSnapshot is the freshly-read order state a decision is made against.
type OrderSnapshot struct {
	ID                      uuid.UUID
	Status                  enums.OrderStatus
	CallAssignedToID        *uuid.UUID
	SelectedDeliveryAgentID *uuid.UUID
	DeliveryAgentID         *uuid.UUID
	CallConfirmedAt         *time.Time
}
