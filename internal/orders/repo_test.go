package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  call_assigned_to_id TEXT,
  call_assigned_by_id TEXT,
  call_assigned_at DATETIME,
  call_confirmed_at DATETIME,
  call_notes TEXT,
  selected_delivery_agent_id TEXT,
  delivery_agent_id TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  title TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	callAttempts := `
CREATE TABLE IF NOT EXISTS call_attempts (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  agent_id TEXT NOT NULL,
  outcome TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME
);`
	statusChanges := `
CREATE TABLE IF NOT EXISTS order_status_changes (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  from_status TEXT,
  to_status TEXT NOT NULL,
  changed_by_id TEXT NOT NULL,
  created_at DATETIME
);`

	for _, stmt := range []string{orders, orderItems, callAttempts, statusChanges} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, mutate func(*models.Order)) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   int64(100000 + uuid.New().ID()%1000000),
		CustomerID:    uuid.New(),
		Status:        status,
		SubtotalCents: 2500,
		TotalCents:    2500,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := &models.Order{
		OrderNumber:   int64(200000 + uuid.New().ID()%1000000),
		CustomerID:    uuid.New(),
		Status:        enums.OrderStatusPending,
		SubtotalCents: 4000,
		TotalCents:    4000,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Title: "Blue Hoodie", Qty: 2, PriceCents: 2000, TotalCents: 4000},
		},
	}

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Blue Hoodie", found.Items[0].Title)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agentID := uuid.New()
	assigned := seedOrder(t, db, enums.OrderStatusCallAssigned, func(o *models.Order) {
		o.CallAssignedToID = &agentID
	})
	seedOrder(t, db, enums.OrderStatusPending, nil)

	list, err := repo.List(ctx, pagination.Params{}, OrderFilters{CallAssignedToID: &agentID})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, assigned.ID, list.Orders[0].ID)

	status := enums.OrderStatusCallAssigned
	list, err = repo.List(ctx, pagination.Params{}, OrderFilters{Status: &status, CallAssignedToID: &agentID})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
}

func TestRepositoryStatusChangeOrdering(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusPending, nil)
	actor := uuid.New()

	pending := enums.OrderStatusPending
	assigned := enums.OrderStatusCallAssigned
	require.NoError(t, repo.CreateStatusChange(ctx, &models.OrderStatusChange{
		OrderID: order.ID, ToStatus: pending, ChangedByID: actor,
	}))
	require.NoError(t, repo.CreateStatusChange(ctx, &models.OrderStatusChange{
		OrderID: order.ID, FromStatus: &pending, ToStatus: assigned, ChangedByID: actor,
	}))

	changes, err := repo.ListStatusChanges(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Nil(t, changes[0].FromStatus)
	require.NotNil(t, changes[1].FromStatus)
	assert.Equal(t, pending, *changes[1].FromStatus)
}

func TestRepositoryHasConfirmedCallAttempt(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, enums.OrderStatusCallAssigned, nil)

	ok, err := repo.HasConfirmedCallAttempt(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.CreateCallAttempt(ctx, &models.CallAttempt{
		OrderID: order.ID, AgentID: uuid.New(), Outcome: enums.CallOutcomeUnreachable,
	}))
	ok, err = repo.HasConfirmedCallAttempt(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.CreateCallAttempt(ctx, &models.CallAttempt{
		OrderID: order.ID, AgentID: uuid.New(), Outcome: enums.CallOutcomeConfirmed,
	}))
	ok, err = repo.HasConfirmedCallAttempt(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

// failingStatusChangeRepo wraps the real repository and fails the history
// insert, to prove the surrounding transaction rolls the status write back.
type failingStatusChangeRepo struct {
	Repository
}

func (f failingStatusChangeRepo) WithTx(tx *gorm.DB) Repository {
	return failingStatusChangeRepo{Repository: f.Repository.WithTx(tx)}
}

func (f failingStatusChangeRepo) CreateStatusChange(ctx context.Context, change *models.OrderStatusChange) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "history insert failed")
}

func TestCommitRollsBackWhenHistoryInsertFails(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agent := &workflow.AgentRecord{ID: uuid.New(), Role: enums.UserRoleCallAgent, Active: true}
	order := seedOrder(t, db, enums.OrderStatusPending, nil)

	svc, err := NewService(ServiceParams{
		Repo:           failingStatusChangeRepo{Repository: repo},
		Tx:             gormTxRunner{db: db},
		CallAgents:     &stubCallAgents{record: agent},
		DeliveryAgents: &stubDeliveryAgents{},
	})
	require.NoError(t, err)

	_, err = svc.AssignCallAgent(ctx, AssignCallAgentInput{
		OrderID: order.ID,
		Actor:   workflow.Actor{ID: uuid.New(), Role: enums.UserRoleSuperAdmin},
		AgentID: agent.ID,
	})
	require.Error(t, err)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, reloaded.Status)
	assert.Nil(t, reloaded.CallAssignedToID)

	changes, err := repo.ListStatusChanges(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestFullLifecycleWritesOneHistoryRowPerStep(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	callAgent := &workflow.AgentRecord{ID: uuid.New(), Role: enums.UserRoleCallAgent, Active: true}
	courierID := uuid.New()
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Tx:         gormTxRunner{db: db},
		CallAgents: &stubCallAgents{record: callAgent},
		DeliveryAgents: &stubDeliveryAgents{records: map[uuid.UUID]*workflow.AgentRecord{
			courierID: {ID: courierID, Active: true},
		}},
	})
	require.NoError(t, err)

	super := workflow.Actor{ID: uuid.New(), Role: enums.UserRoleSuperAdmin}
	admin := workflow.Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}

	created, err := svc.Create(ctx, CreateOrderInput{
		Actor:      admin,
		CustomerID: uuid.New(),
		Items: []CreateOrderItemInput{
			{ProductID: uuid.New(), Title: "Desk Lamp", Qty: 1, PriceCents: 3500},
		},
	})
	require.NoError(t, err)
	orderID := created.ID

	_, err = svc.AssignCallAgent(ctx, AssignCallAgentInput{OrderID: orderID, Actor: super, AgentID: callAgent.ID})
	require.NoError(t, err)

	_, err = svc.LogCallAttempt(ctx, LogCallAttemptInput{
		OrderID: orderID,
		Actor:   workflow.Actor{ID: callAgent.ID, Role: enums.UserRoleCallAgent},
		Outcome: enums.CallOutcomeConfirmed,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: orderID, Actor: admin, Status: enums.OrderStatusPacked})
	require.NoError(t, err)

	_, err = svc.SelectDeliveryAgent(ctx, SelectDeliveryAgentInput{OrderID: orderID, Actor: admin, AgentID: courierID})
	require.NoError(t, err)

	_, err = svc.AssignDeliveryAgent(ctx, AssignDeliveryAgentInput{OrderID: orderID, Actor: admin})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{OrderID: orderID, Actor: admin, Status: enums.OrderStatusOutForDelivery})
	require.NoError(t, err)

	final, err := svc.FastForward(ctx, FastForwardInput{OrderID: orderID, Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, final.Status)
	require.NotNil(t, final.DeliveryAgentID)
	assert.Equal(t, courierID, *final.DeliveryAgentID)

	changes, err := repo.ListStatusChanges(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, changes, 8)

	expected := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusCallAssigned,
		enums.OrderStatusCallConfirmed,
		enums.OrderStatusPacked,
		enums.OrderStatusDeliveryAgentSelected,
		enums.OrderStatusDeliveryAssigned,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
	}
	for i, change := range changes {
		assert.Equal(t, expected[i], change.ToStatus, "step %d", i)
		if i == 0 {
			assert.Nil(t, change.FromStatus)
			continue
		}
		require.NotNil(t, change.FromStatus)
		assert.Equal(t, expected[i-1], *change.FromStatus, "step %d from", i)
	}

	attempts, err := repo.ListCallAttempts(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, enums.CallOutcomeConfirmed, attempts[0].Outcome)
}
