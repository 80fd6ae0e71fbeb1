package workflow

import (
	"testing"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
)

func TestTransitionGraphClosure(t *testing.T) {
	expected := map[enums.OrderStatus]map[enums.OrderStatus]bool{
		enums.OrderStatusPending: {
			enums.OrderStatusCallAssigned: true,
			enums.OrderStatusCancelled:    true,
		},
		enums.OrderStatusCallAssigned: {
			enums.OrderStatusCallConfirmed: true,
			enums.OrderStatusCancelled:     true,
		},
		enums.OrderStatusCallConfirmed: {
			enums.OrderStatusPacked:    true,
			enums.OrderStatusCancelled: true,
		},
		enums.OrderStatusPacked: {
			enums.OrderStatusDeliveryAgentSelected: true,
			enums.OrderStatusCancelled:             true,
		},
		enums.OrderStatusDeliveryAgentSelected: {
			enums.OrderStatusDeliveryAssigned: true,
			enums.OrderStatusCancelled:        true,
		},
		enums.OrderStatusDeliveryAssigned: {
			enums.OrderStatusOutForDelivery: true,
			enums.OrderStatusCancelled:      true,
		},
		enums.OrderStatusOutForDelivery: {
			enums.OrderStatusDelivered: true,
			enums.OrderStatusReturned:  true,
		},
		enums.OrderStatusDelivered: {
			enums.OrderStatusReturned: true,
		},
		enums.OrderStatusCancelled: {},
		enums.OrderStatusReturned:  {},
	}

	for _, from := range enums.AllOrderStatuses() {
		for _, to := range enums.AllOrderStatuses() {
			want := expected[from][to]
			got := IsValidTransition(from, to)
			if got != want {
				t.Errorf("IsValidTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestNextForwardStatus(t *testing.T) {
	cases := []struct {
		from enums.OrderStatus
		next enums.OrderStatus
		ok   bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusCallAssigned, true},
		{enums.OrderStatusCallAssigned, enums.OrderStatusCallConfirmed, true},
		{enums.OrderStatusCallConfirmed, enums.OrderStatusPacked, true},
		{enums.OrderStatusPacked, enums.OrderStatusDeliveryAgentSelected, true},
		{enums.OrderStatusDeliveryAgentSelected, enums.OrderStatusDeliveryAssigned, true},
		{enums.OrderStatusDeliveryAssigned, enums.OrderStatusOutForDelivery, true},
		{enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered, true},
		{enums.OrderStatusDelivered, "", false},
		{enums.OrderStatusCancelled, "", false},
		{enums.OrderStatusReturned, "", false},
	}

	for _, tc := range cases {
		next, ok := NextForwardStatus(tc.from)
		if ok != tc.ok {
			t.Errorf("NextForwardStatus(%s) ok = %v, want %v", tc.from, ok, tc.ok)
			continue
		}
		if ok && next != tc.next {
			t.Errorf("NextForwardStatus(%s) = %s, want %s", tc.from, next, tc.next)
		}
	}
}

func TestAllowedTransitionsIsACopy(t *testing.T) {
	edges := AllowedTransitions(enums.OrderStatusPending)
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges from PENDING, got %d", len(edges))
	}
	edges[0] = enums.OrderStatusDelivered
	if IsValidTransition(enums.OrderStatusPending, enums.OrderStatusDelivered) {
		t.Fatal("mutating the returned slice must not affect the table")
	}
}
