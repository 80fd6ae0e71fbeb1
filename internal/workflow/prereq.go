package workflow

import (
	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// resolution carries ids settled during prerequisite checking so the engine
// does not re-derive them when building mutations.
type resolution struct {
	callAgentID     *uuid.UUID
	deliveryAgentID *uuid.UUID
}

// checkPrerequisites verifies the business facts a graph-valid transition
// additionally requires. Failures name the exact missing fact.
func checkPrerequisites(order OrderSnapshot, target enums.OrderStatus, wctx Context) (resolution, error) {
	var res resolution

	switch target {
	case enums.OrderStatusCallAssigned:
		id, err := resolveCallAgent(order, wctx)
		if err != nil {
			return res, err
		}
		res.callAgentID = id

	case enums.OrderStatusCallConfirmed:
		if !wctx.Facts.HasConfirmedCallAttempt {
			return res, errors.New(errors.CodePrerequisite, "order has no confirmed call attempt").
				WithReason(errors.ReasonNoConfirmedCallAttempt)
		}

	case enums.OrderStatusDeliveryAgentSelected:
		id, err := resolveSelectedAgent(wctx)
		if err != nil {
			return res, err
		}
		res.deliveryAgentID = id

	case enums.OrderStatusDeliveryAssigned:
		id, err := resolveAssignedAgent(order, wctx)
		if err != nil {
			return res, err
		}
		res.deliveryAgentID = id

	case enums.OrderStatusOutForDelivery:
		if order.DeliveryAgentID == nil {
			return res, errors.New(errors.CodePrerequisite, "order has no assigned delivery agent").
				WithReason(errors.ReasonNoDeliveryAgentAssigned)
		}
	}

	return res, nil
}

func resolveCallAgent(order OrderSnapshot, wctx Context) (*uuid.UUID, error) {
	if wctx.AgentID == nil {
		// No explicit assignee; acceptable only when one is already recorded.
		if order.CallAssignedToID != nil {
			return nil, nil
		}
		return nil, errors.New(errors.CodePrerequisite, "no call agent supplied or assigned").
			WithReason(errors.ReasonNoCallAgentAssigned)
	}

	agent := wctx.Facts.CallAgent
	if agent == nil || agent.ID != *wctx.AgentID {
		return nil, errors.New(errors.CodeNotFound, "call agent not found")
	}
	if agent.Role != enums.UserRoleCallAgent {
		return nil, errors.New(errors.CodePrerequisite, "assignee is not a call agent").
			WithReason(errors.ReasonInvalidCallAgent)
	}
	if !agent.Active {
		return nil, errors.New(errors.CodePrerequisite, "call agent is not active").
			WithReason(errors.ReasonCallAgentNotActive)
	}
	return wctx.AgentID, nil
}

func resolveSelectedAgent(wctx Context) (*uuid.UUID, error) {
	if wctx.AgentID == nil {
		return nil, errors.New(errors.CodePrerequisite, "no delivery agent supplied").
			WithReason(errors.ReasonNoDeliveryAgentSelected)
	}
	if err := checkDeliveryAgentFact(wctx, *wctx.AgentID); err != nil {
		return nil, err
	}
	return wctx.AgentID, nil
}

func resolveAssignedAgent(order OrderSnapshot, wctx Context) (*uuid.UUID, error) {
	final := wctx.AgentID
	if final == nil {
		final = order.SelectedDeliveryAgentID
	}
	if final == nil {
		return nil, errors.New(errors.CodePrerequisite, "no delivery agent selected or supplied").
			WithReason(errors.ReasonNoDeliveryAgentSelected)
	}

	diverges := wctx.AgentID != nil &&
		order.SelectedDeliveryAgentID != nil &&
		*wctx.AgentID != *order.SelectedDeliveryAgentID
	if diverges {
		if err := checkOverride(wctx); err != nil {
			return nil, err
		}
	}

	if err := checkDeliveryAgentFact(wctx, *final); err != nil {
		return nil, err
	}
	return final, nil
}

func checkDeliveryAgentFact(wctx Context, id uuid.UUID) error {
	agent := wctx.Facts.DeliveryAgent
	if agent == nil || agent.ID != id {
		return errors.New(errors.CodeNotFound, "delivery agent not found")
	}
	if !agent.Active {
		return errors.New(errors.CodePrerequisite, "delivery agent is not active").
			WithReason(errors.ReasonDeliveryAgentNotActive)
	}
	return nil
}
