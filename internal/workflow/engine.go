package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// Mutations is the declarative field-change set a committed plan applies to
// the order row. Nil pointers mean "leave untouched".
type Mutations struct {
	CallAssignedToID        *uuid.UUID
	CallAssignedByID        *uuid.UUID
	CallAssignedAt          *time.Time
	CallConfirmedAt         *time.Time
	CallNotes               *string
	SelectedDeliveryAgentID *uuid.UUID
	DeliveryAgentID         *uuid.UUID
}

// ToUpdates renders the mutation set as a column map for the storage layer.
// The status column is always included.
func (m Mutations) ToUpdates(status enums.OrderStatus) map[string]any {
	updates := map[string]any{"status": status}
	if m.CallAssignedToID != nil {
		updates["call_assigned_to_id"] = *m.CallAssignedToID
	}
	if m.CallAssignedByID != nil {
		updates["call_assigned_by_id"] = *m.CallAssignedByID
	}
	if m.CallAssignedAt != nil {
		updates["call_assigned_at"] = *m.CallAssignedAt
	}
	if m.CallConfirmedAt != nil {
		updates["call_confirmed_at"] = *m.CallConfirmedAt
	}
	if m.CallNotes != nil {
		updates["call_notes"] = *m.CallNotes
	}
	if m.SelectedDeliveryAgentID != nil {
		updates["selected_delivery_agent_id"] = *m.SelectedDeliveryAgentID
	}
	if m.DeliveryAgentID != nil {
		updates["delivery_agent_id"] = *m.DeliveryAgentID
	}
	return updates
}

// Audit describes the advisory business-audit entry the caller records after
// a successful commit.
type Audit struct {
	Action   enums.AuditAction
	Metadata map[string]any
}

// Plan is the engine's output: everything the caller must persist in one
// atomic unit, plus the audit entry to record afterwards.
type Plan struct {
	OrderID   uuid.UUID
	From      enums.OrderStatus
	To        enums.OrderStatus
	ChangedBy uuid.UUID
	Mutations Mutations
	Audit     Audit
}

// PlanTransition validates a requested transition against the status graph,
// the role gate and the prerequisite checks, then returns the declarative
// plan. It is a pure function of its inputs and performs no I/O; a rejected
// call has produced no side effects anywhere.
func PlanTransition(order OrderSnapshot, target enums.OrderStatus, wctx Context) (*Plan, error) {
	if !target.IsValid() {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown status %q", target))
	}
	if !IsValidTransition(order.Status, target) {
		return nil, errors.New(errors.CodeInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", order.Status, target))
	}
	if err := CheckRoleGate(wctx.Op, wctx.Actor, order); err != nil {
		return nil, err
	}
	res, err := checkPrerequisites(order, target, wctx)
	if err != nil {
		return nil, err
	}

	now := wctx.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	plan := &Plan{
		OrderID:   order.ID,
		From:      order.Status,
		To:        target,
		ChangedBy: wctx.Actor.ID,
		Audit: Audit{
			Action: auditActionFor(wctx.Op),
			Metadata: map[string]any{
				"from": order.Status.String(),
				"to":   target.String(),
			},
		},
	}

	switch target {
	case enums.OrderStatusCallAssigned:
		if res.callAgentID != nil {
			plan.Mutations.CallAssignedToID = res.callAgentID
			plan.Mutations.CallAssignedByID = &wctx.Actor.ID
			at := now
			plan.Mutations.CallAssignedAt = &at
			plan.Audit.Metadata["agent_id"] = res.callAgentID.String()
		}

	case enums.OrderStatusCallConfirmed:
		if order.CallConfirmedAt == nil {
			at := now
			plan.Mutations.CallConfirmedAt = &at
		}
		if wctx.Notes != nil {
			plan.Mutations.CallNotes = wctx.Notes
		}

	case enums.OrderStatusDeliveryAgentSelected:
		plan.Mutations.SelectedDeliveryAgentID = res.deliveryAgentID
		plan.Audit.Metadata["agent_id"] = res.deliveryAgentID.String()

	case enums.OrderStatusDeliveryAssigned:
		plan.Mutations.DeliveryAgentID = res.deliveryAgentID
		plan.Audit.Metadata["agent_id"] = res.deliveryAgentID.String()
		if wctx.Override {
			plan.Audit.Metadata["override"] = true
			plan.Audit.Metadata["override_reason"] = trimmed(wctx.OverrideReason)
		}

	case enums.OrderStatusCancelled:
		if wctx.Notes != nil {
			plan.Mutations.CallNotes = wctx.Notes
		}
	}

	return plan, nil
}

func auditActionFor(op Operation) enums.AuditAction {
	switch op {
	case OpAssignCallAgent:
		return enums.AuditActionOrderCallAssigned
	case OpLogCallAttempt:
		return enums.AuditActionOrderCallAttempt
	case OpSelectDeliveryAgent:
		return enums.AuditActionOrderDeliverySelected
	case OpAssignDeliveryAgent:
		return enums.AuditActionOrderDeliveryAssigned
	case OpFastForward:
		return enums.AuditActionOrderFastForward
	default:
		return enums.AuditActionOrderStatusUpdated
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
