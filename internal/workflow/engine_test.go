package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

var testNow = time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)

func superAdmin() Actor { return Actor{ID: uuid.New(), Role: enums.UserRoleSuperAdmin} }
func admin() Actor      { return Actor{ID: uuid.New(), Role: enums.UserRoleAdmin} }

func pendingOrder() OrderSnapshot {
	return OrderSnapshot{ID: uuid.New(), Status: enums.OrderStatusPending}
}

func activeCallAgent() *AgentRecord {
	return &AgentRecord{ID: uuid.New(), Role: enums.UserRoleCallAgent, Active: true}
}

func TestPlanTransitionRejectsInvalidEdge(t *testing.T) {
	order := pendingOrder()
	wctx := Context{Actor: superAdmin(), Op: OpUpdateStatus, Now: testNow}

	_, err := PlanTransition(order, enums.OrderStatusDelivered, wctx)
	if errors.CodeOf(err) != errors.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestPlanTransitionRejectsUnknownStatus(t *testing.T) {
	order := pendingOrder()
	wctx := Context{Actor: superAdmin(), Op: OpUpdateStatus, Now: testNow}

	_, err := PlanTransition(order, enums.OrderStatus("SHIPPED"), wctx)
	if errors.CodeOf(err) != errors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestAssignCallAgentRoleGate(t *testing.T) {
	agent := activeCallAgent()
	order := pendingOrder()

	denied := []enums.UserRole{enums.UserRoleAdmin, enums.UserRoleCallAgent, enums.UserRoleCustomer}
	for _, role := range denied {
		wctx := Context{
			Actor:   Actor{ID: uuid.New(), Role: role},
			Op:      OpAssignCallAgent,
			AgentID: &agent.ID,
			Facts:   Facts{CallAgent: agent},
			Now:     testNow,
		}
		_, err := PlanTransition(order, enums.OrderStatusCallAssigned, wctx)
		if errors.CodeOf(err) != errors.CodeForbidden {
			t.Errorf("role %s: expected FORBIDDEN, got %v", role, err)
		}
	}
}

func TestAssignCallAgentSuccess(t *testing.T) {
	agent := activeCallAgent()
	actor := superAdmin()
	order := pendingOrder()
	wctx := Context{
		Actor:   actor,
		Op:      OpAssignCallAgent,
		AgentID: &agent.ID,
		Facts:   Facts{CallAgent: agent},
		Now:     testNow,
	}

	plan, err := PlanTransition(order, enums.OrderStatusCallAssigned, wctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.To != enums.OrderStatusCallAssigned {
		t.Fatalf("unexpected target %s", plan.To)
	}
	if plan.Mutations.CallAssignedToID == nil || *plan.Mutations.CallAssignedToID != agent.ID {
		t.Fatal("call agent id not recorded in mutations")
	}
	if plan.Mutations.CallAssignedByID == nil || *plan.Mutations.CallAssignedByID != actor.ID {
		t.Fatal("assigning actor not recorded in mutations")
	}
	if plan.Mutations.CallAssignedAt == nil || !plan.Mutations.CallAssignedAt.Equal(testNow) {
		t.Fatal("assignment timestamp not recorded")
	}
	if plan.Audit.Action != enums.AuditActionOrderCallAssigned {
		t.Fatalf("unexpected audit action %s", plan.Audit.Action)
	}
}

func TestAssignCallAgentValidation(t *testing.T) {
	order := pendingOrder()
	unknownID := uuid.New()

	cases := []struct {
		name       string
		agentID    *uuid.UUID
		fact       *AgentRecord
		wantCode   errors.Code
		wantReason string
	}{
		{
			name:       "no agent supplied",
			wantCode:   errors.CodePrerequisite,
			wantReason: errors.ReasonNoCallAgentAssigned,
		},
		{
			name:     "agent id does not resolve",
			agentID:  &unknownID,
			wantCode: errors.CodeNotFound,
		},
		{
			name:       "agent has wrong role",
			agentID:    &unknownID,
			fact:       &AgentRecord{ID: unknownID, Role: enums.UserRoleAdmin, Active: true},
			wantCode:   errors.CodePrerequisite,
			wantReason: errors.ReasonInvalidCallAgent,
		},
		{
			name:       "agent inactive",
			agentID:    &unknownID,
			fact:       &AgentRecord{ID: unknownID, Role: enums.UserRoleCallAgent, Active: false},
			wantCode:   errors.CodePrerequisite,
			wantReason: errors.ReasonCallAgentNotActive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wctx := Context{
				Actor:   superAdmin(),
				Op:      OpAssignCallAgent,
				AgentID: tc.agentID,
				Facts:   Facts{CallAgent: tc.fact},
				Now:     testNow,
			}
			_, err := PlanTransition(order, enums.OrderStatusCallAssigned, wctx)
			if errors.CodeOf(err) != tc.wantCode {
				t.Fatalf("expected code %s, got %v", tc.wantCode, err)
			}
			if tc.wantReason != "" && errors.ReasonOf(err) != tc.wantReason {
				t.Fatalf("expected reason %s, got %s", tc.wantReason, errors.ReasonOf(err))
			}
		})
	}
}

func TestConfirmationGating(t *testing.T) {
	agentID := uuid.New()
	order := OrderSnapshot{
		ID:               uuid.New(),
		Status:           enums.OrderStatusCallAssigned,
		CallAssignedToID: &agentID,
	}

	wctx := Context{Actor: admin(), Op: OpUpdateStatus, Now: testNow}
	_, err := PlanTransition(order, enums.OrderStatusCallConfirmed, wctx)
	if errors.CodeOf(err) != errors.CodePrerequisite || errors.ReasonOf(err) != errors.ReasonNoConfirmedCallAttempt {
		t.Fatalf("expected NO_CONFIRMED_CALL_ATTEMPT, got %v", err)
	}

	wctx.Facts.HasConfirmedCallAttempt = true
	plan, err := PlanTransition(order, enums.OrderStatusCallConfirmed, wctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Mutations.CallConfirmedAt == nil {
		t.Fatal("confirmation timestamp not set")
	}
}

func TestConfirmationTimestampNotOverwritten(t *testing.T) {
	agentID := uuid.New()
	confirmed := testNow.Add(-time.Hour)
	order := OrderSnapshot{
		ID:               uuid.New(),
		Status:           enums.OrderStatusCallAssigned,
		CallAssignedToID: &agentID,
		CallConfirmedAt:  &confirmed,
	}
	wctx := Context{
		Actor: admin(),
		Op:    OpUpdateStatus,
		Facts: Facts{HasConfirmedCallAttempt: true},
		Now:   testNow,
	}

	plan, err := PlanTransition(order, enums.OrderStatusCallConfirmed, wctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Mutations.CallConfirmedAt != nil {
		t.Fatal("existing confirmation timestamp must be preserved")
	}
}

func TestSelectDeliveryAgent(t *testing.T) {
	order := OrderSnapshot{ID: uuid.New(), Status: enums.OrderStatusPacked}

	wctx := Context{Actor: admin(), Op: OpSelectDeliveryAgent, Now: testNow}
	_, err := PlanTransition(order, enums.OrderStatusDeliveryAgentSelected, wctx)
	if errors.ReasonOf(err) != errors.ReasonNoDeliveryAgentSelected {
		t.Fatalf("expected NO_DELIVERY_AGENT_SELECTED, got %v", err)
	}

	agentID := uuid.New()
	wctx.AgentID = &agentID
	_, err = PlanTransition(order, enums.OrderStatusDeliveryAgentSelected, wctx)
	if errors.CodeOf(err) != errors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for unresolved agent, got %v", err)
	}

	wctx.Facts.DeliveryAgent = &AgentRecord{ID: agentID, Active: false}
	_, err = PlanTransition(order, enums.OrderStatusDeliveryAgentSelected, wctx)
	if errors.ReasonOf(err) != errors.ReasonDeliveryAgentNotActive {
		t.Fatalf("expected DELIVERY_AGENT_NOT_ACTIVE, got %v", err)
	}

	wctx.Facts.DeliveryAgent.Active = true
	plan, err := PlanTransition(order, enums.OrderStatusDeliveryAgentSelected, wctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Mutations.SelectedDeliveryAgentID == nil || *plan.Mutations.SelectedDeliveryAgentID != agentID {
		t.Fatal("selected agent not recorded in mutations")
	}
}

func TestAssignDeliveryAgentInheritsSelection(t *testing.T) {
	selected := uuid.New()
	order := OrderSnapshot{
		ID:                      uuid.New(),
		Status:                  enums.OrderStatusDeliveryAgentSelected,
		SelectedDeliveryAgentID: &selected,
	}
	wctx := Context{
		Actor: admin(),
		Op:    OpAssignDeliveryAgent,
		Facts: Facts{DeliveryAgent: &AgentRecord{ID: selected, Active: true}},
		Now:   testNow,
	}

	plan, err := PlanTransition(order, enums.OrderStatusDeliveryAssigned, wctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Mutations.DeliveryAgentID == nil || *plan.Mutations.DeliveryAgentID != selected {
		t.Fatal("assignment must inherit the selected agent")
	}
}

func TestAssignDeliveryAgentNoSelectionNoExplicit(t *testing.T) {
	order := OrderSnapshot{ID: uuid.New(), Status: enums.OrderStatusDeliveryAgentSelected}
	wctx := Context{Actor: admin(), Op: OpAssignDeliveryAgent, Now: testNow}

	_, err := PlanTransition(order, enums.OrderStatusDeliveryAssigned, wctx)
	if errors.ReasonOf(err) != errors.ReasonNoDeliveryAgentSelected {
		t.Fatalf("expected NO_DELIVERY_AGENT_SELECTED, got %v", err)
	}
}

func TestAssignDeliveryAgentOverrideMatrix(t *testing.T) {
	selected := uuid.New()
	other := uuid.New()
	order := OrderSnapshot{
		ID:                      uuid.New(),
		Status:                  enums.OrderStatusDeliveryAgentSelected,
		SelectedDeliveryAgentID: &selected,
	}
	otherFact := &AgentRecord{ID: other, Active: true}

	t.Run("admin may not diverge", func(t *testing.T) {
		wctx := Context{
			Actor:   admin(),
			Op:      OpAssignDeliveryAgent,
			AgentID: &other,
			Facts:   Facts{DeliveryAgent: otherFact},
			Now:     testNow,
		}
		_, err := PlanTransition(order, enums.OrderStatusDeliveryAssigned, wctx)
		if errors.CodeOf(err) != errors.CodeForbidden {
			t.Fatalf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("super admin without flag", func(t *testing.T) {
		wctx := Context{
			Actor:          superAdmin(),
			Op:             OpAssignDeliveryAgent,
			AgentID:        &other,
			Override:       false,
			OverrideReason: "customer asked",
			Facts:          Facts{DeliveryAgent: otherFact},
			Now:            testNow,
		}
		_, err := PlanTransition(order, enums.OrderStatusDeliveryAssigned, wctx)
		if errors.ReasonOf(err) != errors.ReasonOverrideFlagOrReasonMissing {
			t.Fatalf("expected OVERRIDE_FLAG_OR_REASON_MISSING, got %v", err)
		}
	})

	t.Run("super admin with empty reason", func(t *testing.T) {
		wctx := Context{
			Actor:          superAdmin(),
			Op:             OpAssignDeliveryAgent,
			AgentID:        &other,
			Override:       true,
			OverrideReason: "   ",
			Facts:          Facts{DeliveryAgent: otherFact},
			Now:            testNow,
		}
		_, err := PlanTransition(order, enums.OrderStatusDeliveryAssigned, wctx)
		if errors.ReasonOf(err) != errors.ReasonOverrideFlagOrReasonMissing {
			t.Fatalf("expected OVERRIDE_FLAG_OR_REASON_MISSING, got %v", err)
		}
	})

	t.Run("super admin with flag and reason", func(t *testing.T) {
		wctx := Context{
			Actor:          superAdmin(),
			Op:             OpAssignDeliveryAgent,
			AgentID:        &other,
			Override:       true,
			OverrideReason: "selected agent called in sick",
			Facts:          Facts{DeliveryAgent: otherFact},
			Now:            testNow,
		}
		plan, err := PlanTransition(order, enums.OrderStatusDeliveryAssigned, wctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if plan.Mutations.DeliveryAgentID == nil || *plan.Mutations.DeliveryAgentID != other {
			t.Fatal("override assignment must use the explicit agent")
		}
		if plan.Audit.Metadata["override"] != true {
			t.Fatal("override must be recorded in audit metadata")
		}
	})
}

func TestOutForDeliveryRequiresAssignedAgent(t *testing.T) {
	order := OrderSnapshot{ID: uuid.New(), Status: enums.OrderStatusDeliveryAssigned}
	wctx := Context{Actor: admin(), Op: OpUpdateStatus, Now: testNow}

	_, err := PlanTransition(order, enums.OrderStatusOutForDelivery, wctx)
	if errors.ReasonOf(err) != errors.ReasonNoDeliveryAgentAssigned {
		t.Fatalf("expected NO_DELIVERY_AGENT_ASSIGNED, got %v", err)
	}

	agentID := uuid.New()
	order.DeliveryAgentID = &agentID
	if _, err := PlanTransition(order, enums.OrderStatusOutForDelivery, wctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCallAttemptOwnership(t *testing.T) {
	agentID := uuid.New()
	order := OrderSnapshot{
		ID:               uuid.New(),
		Status:           enums.OrderStatusCallAssigned,
		CallAssignedToID: &agentID,
	}

	owner := Actor{ID: agentID, Role: enums.UserRoleCallAgent}
	if err := CheckRoleGate(OpLogCallAttempt, owner, order); err != nil {
		t.Fatalf("assigned call agent must pass the gate: %v", err)
	}

	stranger := Actor{ID: uuid.New(), Role: enums.UserRoleCallAgent}
	if err := CheckRoleGate(OpLogCallAttempt, stranger, order); errors.CodeOf(err) != errors.CodeForbidden {
		t.Fatalf("unassigned call agent must be forbidden, got %v", err)
	}

	if err := CheckRoleGate(OpLogCallAttempt, admin(), order); err != nil {
		t.Fatalf("admin bypasses the ownership check: %v", err)
	}

	customer := Actor{ID: uuid.New(), Role: enums.UserRoleCustomer}
	if err := CheckRoleGate(OpLogCallAttempt, customer, order); errors.CodeOf(err) != errors.CodeForbidden {
		t.Fatalf("customer must be forbidden, got %v", err)
	}
}

func TestGenericUpdateStillRunsPrerequisites(t *testing.T) {
	// The generic status update is not a prerequisite bypass: an admin may
	// not jump CALL_ASSIGNED -> CALL_CONFIRMED without a confirmed attempt.
	agentID := uuid.New()
	order := OrderSnapshot{
		ID:               uuid.New(),
		Status:           enums.OrderStatusCallAssigned,
		CallAssignedToID: &agentID,
	}
	wctx := Context{Actor: admin(), Op: OpUpdateStatus, Now: testNow}

	_, err := PlanTransition(order, enums.OrderStatusCallConfirmed, wctx)
	if errors.CodeOf(err) != errors.CodePrerequisite {
		t.Fatalf("expected PREREQUISITE_NOT_MET, got %v", err)
	}
}
