package enums

import "fmt"

// AuditAction names a business event recorded in the audit log.
type AuditAction string

const (
	AuditActionOrderCreated          AuditAction = "ORDER_CREATED"
	AuditActionOrderCallAssigned     AuditAction = "ORDER_CALL_ASSIGNED"
	AuditActionOrderCallAttempt      AuditAction = "ORDER_CALL_ATTEMPT"
	AuditActionOrderDeliverySelected AuditAction = "ORDER_DELIVERY_SELECTED"
	AuditActionOrderDeliveryAssigned AuditAction = "ORDER_DELIVERY_ASSIGNED"
	AuditActionOrderFastForward      AuditAction = "ORDER_FAST_FORWARD"
	AuditActionOrderStatusUpdated    AuditAction = "ORDER_STATUS_UPDATED"
	AuditActionUserLogin             AuditAction = "USER_LOGIN"
)

var validAuditActions = []AuditAction{
	AuditActionOrderCreated,
	AuditActionOrderCallAssigned,
	AuditActionOrderCallAttempt,
	AuditActionOrderDeliverySelected,
	AuditActionOrderDeliveryAssigned,
	AuditActionOrderFastForward,
	AuditActionOrderStatusUpdated,
	AuditActionUserLogin,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
