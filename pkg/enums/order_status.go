package enums

import "fmt"

// OrderStatus tracks an order through the fulfillment workflow.
type OrderStatus string

const (
	OrderStatusPending               OrderStatus = "PENDING"
	OrderStatusCallAssigned          OrderStatus = "CALL_ASSIGNED"
	OrderStatusCallConfirmed         OrderStatus = "CALL_CONFIRMED"
	OrderStatusPacked                OrderStatus = "PACKED"
	OrderStatusDeliveryAgentSelected OrderStatus = "DELIVERY_AGENT_SELECTED"
	OrderStatusDeliveryAssigned      OrderStatus = "DELIVERY_ASSIGNED"
	OrderStatusOutForDelivery        OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered             OrderStatus = "DELIVERED"
	OrderStatusCancelled             OrderStatus = "CANCELLED"
	OrderStatusReturned              OrderStatus = "RETURNED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusCallAssigned,
	OrderStatusCallConfirmed,
	OrderStatusPacked,
	OrderStatusDeliveryAgentSelected,
	OrderStatusDeliveryAssigned,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// AllOrderStatuses returns every known status in workflow order.
func AllOrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further transitions.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCancelled || o == OrderStatusReturned
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
