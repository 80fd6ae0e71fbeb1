package workflow

import (
	"time"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

const (
	defaultConfirmedNotes = "Customer confirmed the order"
	defaultCancelledNotes = "Customer cancelled the order"
)

// OutcomeResolution is the optional transition a call outcome implies. When
// Target is nil the attempt is recorded for audit only and the order status
// is left alone.
type OutcomeResolution struct {
	Target *enums.OrderStatus
	Notes  string
}

// ResolveCallOutcome maps a call attempt outcome to its follow-up transition.
// CONFIRMED advances the order, CUSTOMER_CANCELLED cancels it, and the
// remaining outcomes are no-ops beyond the attempt row itself.
func ResolveCallOutcome(outcome enums.CallOutcome, notes *string, _ time.Time) OutcomeResolution {
	switch outcome {
	case enums.CallOutcomeConfirmed:
		target := enums.OrderStatusCallConfirmed
		return OutcomeResolution{Target: &target, Notes: notesOrDefault(notes, defaultConfirmedNotes)}
	case enums.CallOutcomeCustomerCancelled:
		target := enums.OrderStatusCancelled
		return OutcomeResolution{Target: &target, Notes: notesOrDefault(notes, defaultCancelledNotes)}
	default:
		return OutcomeResolution{}
	}
}

func notesOrDefault(notes *string, fallback string) string {
	if notes != nil && trimmed(*notes) != "" {
		return *notes
	}
	return fallback
}
