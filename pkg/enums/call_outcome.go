package enums

import "fmt"

// CallOutcome records how a confirmation call attempt ended.
type CallOutcome string

const (
	CallOutcomeConfirmed         CallOutcome = "CONFIRMED"
	CallOutcomeUnreachable       CallOutcome = "UNREACHABLE"
	CallOutcomeCustomerCancelled CallOutcome = "CUSTOMER_CANCELLED"
	CallOutcomeWrongNumber       CallOutcome = "WRONG_NUMBER"
)

var validCallOutcomes = []CallOutcome{
	CallOutcomeConfirmed,
	CallOutcomeUnreachable,
	CallOutcomeCustomerCancelled,
	CallOutcomeWrongNumber,
}

// String implements fmt.Stringer.
func (c CallOutcome) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CallOutcome.
func (c CallOutcome) IsValid() bool {
	for _, candidate := range validCallOutcomes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCallOutcome converts raw input into a CallOutcome.
func ParseCallOutcome(value string) (CallOutcome, error) {
	for _, candidate := range validCallOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid call outcome %q", value)
}
