package workflow

import "github.com/orderdeskhq/orderdesk-backend/pkg/enums"

// transitionTable is the closed directed graph of allowed status edges.
// Any edge not present here is rejected unconditionally regardless of role.
var transitionTable = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:               {enums.OrderStatusCallAssigned, enums.OrderStatusCancelled},
	enums.OrderStatusCallAssigned:          {enums.OrderStatusCallConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusCallConfirmed:         {enums.OrderStatusPacked, enums.OrderStatusCancelled},
	enums.OrderStatusPacked:                {enums.OrderStatusDeliveryAgentSelected, enums.OrderStatusCancelled},
	enums.OrderStatusDeliveryAgentSelected: {enums.OrderStatusDeliveryAssigned, enums.OrderStatusCancelled},
	enums.OrderStatusDeliveryAssigned:      {enums.OrderStatusOutForDelivery, enums.OrderStatusCancelled},
	enums.OrderStatusOutForDelivery:        {enums.OrderStatusDelivered, enums.OrderStatusReturned},
	enums.OrderStatusDelivered:             {enums.OrderStatusReturned},
	enums.OrderStatusCancelled:             {},
	enums.OrderStatusReturned:              {},
}

// forwardTable maps each status to its single canonical next status on the
// happy path. Statuses absent from the table cannot be advanced.
var forwardTable = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusPending:               enums.OrderStatusCallAssigned,
	enums.OrderStatusCallAssigned:          enums.OrderStatusCallConfirmed,
	enums.OrderStatusCallConfirmed:         enums.OrderStatusPacked,
	enums.OrderStatusPacked:                enums.OrderStatusDeliveryAgentSelected,
	enums.OrderStatusDeliveryAgentSelected: enums.OrderStatusDeliveryAssigned,
	enums.OrderStatusDeliveryAssigned:      enums.OrderStatusOutForDelivery,
	enums.OrderStatusOutForDelivery:        enums.OrderStatusDelivered,
}

// IsValidTransition reports whether from -> to is an edge of the status graph.
func IsValidTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the edge set for a status, in table order.
func AllowedTransitions(from enums.OrderStatus) []enums.OrderStatus {
	edges := transitionTable[from]
	out := make([]enums.OrderStatus, len(edges))
	copy(out, edges)
	return out
}

// NextForwardStatus returns the canonical next status for a fast-forward, or
// false when the status is terminal or has no single automatic successor.
func NextForwardStatus(from enums.OrderStatus) (enums.OrderStatus, bool) {
	next, ok := forwardTable[from]
	return next, ok
}
