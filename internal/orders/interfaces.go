package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

// Repository defines persistence operations for order workflow tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	NextOrderNumber(ctx context.Context) (int64, error)
	CreateStatusChange(ctx context.Context, change *models.OrderStatusChange) error
	ListStatusChanges(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusChange, error)
	CreateCallAttempt(ctx context.Context, attempt *models.CallAttempt) error
	ListCallAttempts(ctx context.Context, orderID uuid.UUID) ([]models.CallAttempt, error)
	HasConfirmedCallAttempt(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CallAgentResolver resolves a referenced user id into the fact record the
// prerequisite checks consume.
type CallAgentResolver interface {
	ResolveCallAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord
}

// DeliveryAgentResolver resolves a referenced delivery agent id into the
// fact record the prerequisite checks consume.
type DeliveryAgentResolver interface {
	ResolveDeliveryAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord
}
