package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/metrics"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

type auditRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, action enums.AuditAction, targetType string, targetID uuid.UUID, metadata map[string]any)
}

// Service defines order workflow operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actor workflow.Actor, params pagination.Params, filters OrderFilters) (*OrderList, error)
	History(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) ([]models.OrderStatusChange, error)
	CallAttempts(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) ([]models.CallAttempt, error)
	AssignCallAgent(ctx context.Context, input AssignCallAgentInput) (*models.Order, error)
	LogCallAttempt(ctx context.Context, input LogCallAttemptInput) (*models.Order, error)
	SelectDeliveryAgent(ctx context.Context, input SelectDeliveryAgentInput) (*models.Order, error)
	AssignDeliveryAgent(ctx context.Context, input AssignDeliveryAgentInput) (*models.Order, error)
	FastForward(ctx context.Context, input FastForwardInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelOrderInput) (*models.Order, error)
}

type service struct {
	repo           Repository
	tx             txRunner
	callAgents     CallAgentResolver
	deliveryAgents DeliveryAgentResolver
	audit          auditRecorder
	metrics        *metrics.Metrics
}

// ServiceParams bundles the dependencies required to build the orders service.
type ServiceParams struct {
	Repo           Repository
	Tx             txRunner
	CallAgents     CallAgentResolver
	DeliveryAgents DeliveryAgentResolver
	Audit          auditRecorder
	Metrics        *metrics.Metrics
}

// NewService builds the order workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.CallAgents == nil {
		return nil, fmt.Errorf("call agent resolver required")
	}
	if params.DeliveryAgents == nil {
		return nil, fmt.Errorf("delivery agent resolver required")
	}
	return &service{
		repo:           params.Repo,
		tx:             params.Tx,
		callAgents:     params.CallAgents,
		deliveryAgents: params.DeliveryAgents,
		audit:          params.Audit,
		metrics:        params.Metrics,
	}, nil
}

// Create persists a new PENDING order, its line items and the creation event
// of the status history in one transaction.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if !input.Actor.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff may create orders")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	subtotal := 0
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
		lineTotal := item.Qty * item.PriceCents
		subtotal += lineTotal
		items = append(items, models.OrderItem{
			ProductID:  item.ProductID,
			Title:      strings.TrimSpace(item.Title),
			Qty:        item.Qty,
			PriceCents: item.PriceCents,
			TotalCents: lineTotal,
		})
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return fmt.Errorf("next order number: %w", err)
		}

		order := &models.Order{
			OrderNumber:   number,
			CustomerID:    input.CustomerID,
			Status:        enums.OrderStatusPending,
			SubtotalCents: subtotal,
			TotalCents:    subtotal,
			Notes:         input.Notes,
			Items:         items,
		}
		if created, err = repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		change := &models.OrderStatusChange{
			OrderID:     created.ID,
			FromStatus:  nil,
			ToStatus:    enums.OrderStatusPending,
			ChangedByID: input.Actor.ID,
		}
		if err := repo.CreateStatusChange(ctx, change); err != nil {
			return fmt.Errorf("record creation event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	s.recordAudit(ctx, input.Actor.ID, enums.AuditActionOrderCreated, created.ID, map[string]any{
		"order_number": created.OrderNumber,
	})
	return created, nil
}

func (s *service) Get(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actor workflow.Actor, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	switch {
	case actor.Role.IsStaff():
		// no restriction
	case actor.Role == enums.UserRoleCallAgent:
		// call agents only ever see their own queue
		filters.CallAssignedToID = &actor.ID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not list orders")
	}

	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}

func (s *service) History(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) ([]models.OrderStatusChange, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(actor, order); err != nil {
		return nil, err
	}
	changes, err := s.repo.ListStatusChanges(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing status changes")
	}
	return changes, nil
}

func (s *service) CallAttempts(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) ([]models.CallAttempt, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(actor, order); err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListCallAttempts(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing call attempts")
	}
	return attempts, nil
}

// AssignCallAgent puts a PENDING order into the call queue of a named agent.
func (s *service) AssignCallAgent(ctx context.Context, input AssignCallAgentInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	wctx := workflow.Context{
		Actor:   input.Actor,
		Op:      workflow.OpAssignCallAgent,
		AgentID: &input.AgentID,
		Facts: workflow.Facts{
			CallAgent: s.callAgents.ResolveCallAgent(ctx, input.AgentID),
		},
		Now: time.Now().UTC(),
	}

	plan, err := workflow.PlanTransition(snapshotOf(order), enums.OrderStatusCallAssigned, wctx)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := s.commitPlan(ctx, plan); err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, input.OrderID)
}

// LogCallAttempt appends a contact attempt and applies the transition the
// outcome implies, both inside one transaction. The attempt row is written
// unconditionally; the status mutation only when the implied transition is
// valid from the current status.
func (s *service) LogCallAttempt(ctx context.Context, input LogCallAttemptInput) (*models.Order, error) {
	if !input.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid call outcome %q", input.Outcome))
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	snap := snapshotOf(order)
	if err := workflow.CheckRoleGate(workflow.OpLogCallAttempt, input.Actor, snap); err != nil {
		return nil, s.reject(err)
	}

	now := time.Now().UTC()
	resolved := workflow.ResolveCallOutcome(input.Outcome, input.Notes, now)

	var plan *workflow.Plan
	if resolved.Target != nil && *resolved.Target != order.Status {
		wctx := workflow.Context{
			Actor: input.Actor,
			Op:    workflow.OpLogCallAttempt,
			Facts: workflow.Facts{
				// the attempt row written in this same transaction
				HasConfirmedCallAttempt: input.Outcome == enums.CallOutcomeConfirmed,
			},
			Notes: &resolved.Notes,
			Now:   now,
		}
		plan, err = workflow.PlanTransition(snap, *resolved.Target, wctx)
		if err != nil {
			// The attempt record must survive even when the implied
			// transition is unavailable from the current status.
			if pkgerrors.CodeOf(err) != pkgerrors.CodeInvalidTransition {
				return nil, s.reject(err)
			}
			plan = nil
		}
	}

	attempt := &models.CallAttempt{
		OrderID: order.ID,
		AgentID: input.Actor.ID,
		Outcome: input.Outcome,
		Notes:   input.Notes,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateCallAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("create call attempt: %w", err)
		}
		if plan != nil {
			return applyPlan(ctx, repo, plan)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "logging call attempt")
	}

	if s.metrics != nil {
		s.metrics.CallAttempts.WithLabelValues(input.Outcome.String()).Inc()
		if plan != nil {
			s.metrics.TransitionsTotal.WithLabelValues(plan.From.String(), plan.To.String()).Inc()
		}
	}
	auditMeta := map[string]any{"outcome": input.Outcome.String()}
	if plan != nil {
		auditMeta["from"] = plan.From.String()
		auditMeta["to"] = plan.To.String()
	}
	s.recordAudit(ctx, input.Actor.ID, enums.AuditActionOrderCallAttempt, order.ID, auditMeta)

	return s.loadOrder(ctx, input.OrderID)
}

// SelectDeliveryAgent moves a PACKED order to DELIVERY_AGENT_SELECTED.
func (s *service) SelectDeliveryAgent(ctx context.Context, input SelectDeliveryAgentInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	wctx := workflow.Context{
		Actor:   input.Actor,
		Op:      workflow.OpSelectDeliveryAgent,
		AgentID: &input.AgentID,
		Facts: workflow.Facts{
			DeliveryAgent: s.deliveryAgents.ResolveDeliveryAgent(ctx, input.AgentID),
		},
		Now: time.Now().UTC(),
	}

	plan, err := workflow.PlanTransition(snapshotOf(order), enums.OrderStatusDeliveryAgentSelected, wctx)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := s.commitPlan(ctx, plan); err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, input.OrderID)
}

// AssignDeliveryAgent turns a selection into a binding assignment. When the
// explicit agent differs from the selection the override gate applies.
func (s *service) AssignDeliveryAgent(ctx context.Context, input AssignDeliveryAgentInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	final := input.AgentID
	if final == nil {
		final = order.SelectedDeliveryAgentID
	}
	facts := workflow.Facts{}
	if final != nil {
		facts.DeliveryAgent = s.deliveryAgents.ResolveDeliveryAgent(ctx, *final)
	}

	wctx := workflow.Context{
		Actor:          input.Actor,
		Op:             workflow.OpAssignDeliveryAgent,
		AgentID:        input.AgentID,
		Override:       input.Override,
		OverrideReason: input.OverrideReason,
		Facts:          facts,
		Now:            time.Now().UTC(),
	}

	plan, err := workflow.PlanTransition(snapshotOf(order), enums.OrderStatusDeliveryAssigned, wctx)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := s.commitPlan(ctx, plan); err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, input.OrderID)
}

// FastForward advances an order to its canonical next status with full
// prerequisite enforcement.
func (s *service) FastForward(ctx context.Context, input FastForwardInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	next, ok := workflow.NextForwardStatus(order.Status)
	if !ok {
		return nil, s.reject(pkgerrors.New(pkgerrors.CodeCannotAdvance,
			fmt.Sprintf("order in status %s cannot be advanced", order.Status)))
	}

	facts, err := s.gatherFacts(ctx, order, next)
	if err != nil {
		return nil, err
	}

	wctx := workflow.Context{
		Actor: input.Actor,
		Facts: facts,
		Now:   time.Now().UTC(),
	}
	plan, err := workflow.PlanFastForward(snapshotOf(order), wctx)
	if err != nil {
		return nil, s.reject(err)
	}
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		plan.Audit.Metadata["reason"] = reason
	}
	if err := s.commitPlan(ctx, plan); err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, input.OrderID)
}

// UpdateStatus requests an explicit transition. Prerequisites always run;
// this is not a bypass for the phase-specific checks.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	facts, err := s.gatherFacts(ctx, order, input.Status)
	if err != nil {
		return nil, err
	}

	wctx := workflow.Context{
		Actor: input.Actor,
		Op:    workflow.OpUpdateStatus,
		Facts: facts,
		Notes: input.Notes,
		Now:   time.Now().UTC(),
	}
	plan, err := workflow.PlanTransition(snapshotOf(order), input.Status, wctx)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := s.commitPlan(ctx, plan); err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, input.OrderID)
}

// Cancel terminates an order via the CANCELLED edge of the status graph. It
// shares the explicit-transition path so the same role gate and edge checks
// apply.
func (s *service) Cancel(ctx context.Context, input CancelOrderInput) (*models.Order, error) {
	return s.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: input.OrderID,
		Actor:   input.Actor,
		Status:  enums.OrderStatusCancelled,
		Notes:   input.Notes,
	})
}

// gatherFacts resolves the business facts a target status will need before
// the engine runs. Unused facts are left at their zero values.
func (s *service) gatherFacts(ctx context.Context, order *models.Order, target enums.OrderStatus) (workflow.Facts, error) {
	var facts workflow.Facts

	switch target {
	case enums.OrderStatusCallConfirmed:
		confirmed, err := s.repo.HasConfirmedCallAttempt(ctx, order.ID)
		if err != nil {
			return facts, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking call attempts")
		}
		facts.HasConfirmedCallAttempt = confirmed

	case enums.OrderStatusDeliveryAssigned:
		if order.SelectedDeliveryAgentID != nil {
			facts.DeliveryAgent = s.deliveryAgents.ResolveDeliveryAgent(ctx, *order.SelectedDeliveryAgentID)
		}
	}
	return facts, nil
}

// commitPlan applies a transition plan atomically: the order row mutation and
// the history append either both land or neither does.
func (s *service) commitPlan(ctx context.Context, plan *workflow.Plan) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return applyPlan(ctx, s.repo.WithTx(tx), plan)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "committing transition")
	}

	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(plan.From.String(), plan.To.String()).Inc()
	}
	s.recordAudit(ctx, plan.ChangedBy, plan.Audit.Action, plan.OrderID, plan.Audit.Metadata)
	return nil
}

// applyPlan writes the order mutation plus exactly one status change row.
// Must run inside a transaction.
func applyPlan(ctx context.Context, repo Repository, plan *workflow.Plan) error {
	if err := repo.Update(ctx, plan.OrderID, plan.Mutations.ToUpdates(plan.To)); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	from := plan.From
	change := &models.OrderStatusChange{
		OrderID:     plan.OrderID,
		FromStatus:  &from,
		ToStatus:    plan.To,
		ChangedByID: plan.ChangedBy,
	}
	if err := repo.CreateStatusChange(ctx, change); err != nil {
		return fmt.Errorf("append status change: %w", err)
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) authorizeRead(actor workflow.Actor, order *models.Order) error {
	if actor.Role.IsStaff() {
		return nil
	}
	if actor.Role == enums.UserRoleCallAgent &&
		order.CallAssignedToID != nil && *order.CallAssignedToID == actor.ID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "no access to this order")
}

func (s *service) reject(err error) error {
	if s.metrics != nil {
		s.metrics.RejectionsTotal.WithLabelValues(string(pkgerrors.CodeOf(err))).Inc()
	}
	return err
}

func (s *service) recordAudit(ctx context.Context, actorID uuid.UUID, action enums.AuditAction, orderID uuid.UUID, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, actorID, action, "order", orderID, metadata)
}

func snapshotOf(order *models.Order) workflow.OrderSnapshot {
	return workflow.OrderSnapshot{
		ID:                      order.ID,
		Status:                  order.Status,
		CallAssignedToID:        order.CallAssignedToID,
		SelectedDeliveryAgentID: order.SelectedDeliveryAgentID,
		DeliveryAgentID:         order.DeliveryAgentID,
		CallConfirmedAt:         order.CallConfirmedAt,
	}
}
