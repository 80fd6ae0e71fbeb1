package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
)

// Service exposes delivery agent management plus the fact resolution the
// workflow engine's prerequisite checks consume.
type Service interface {
	Create(ctx context.Context, input CreateAgentInput) (*models.DeliveryAgent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error)
	List(ctx context.Context, activeOnly bool) ([]models.DeliveryAgent, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ResolveDeliveryAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord
}

// CreateAgentInput captures the fields supplied for a new delivery agent.
type CreateAgentInput struct {
	Name    string
	Phone   string
	Vehicle *string
}

type service struct {
	repo Repository
}

// NewService builds the delivery agents service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateAgentInput) (*models.DeliveryAgent, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	agent := &models.DeliveryAgent{
		Name:    name,
		Phone:   phone,
		Vehicle: input.Vehicle,
		Active:  true,
	}
	created, err := s.repo.Create(ctx, agent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating delivery agent")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery agent")
	}
	return agent, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.DeliveryAgent, error) {
	agents, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing delivery agents")
	}
	return agents, nil
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating delivery agent")
	}
	return nil
}

// ResolveDeliveryAgent returns the caller-resolved fact record for a
// referenced delivery agent id, or nil when the id does not resolve.
func (s *service) ResolveDeliveryAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord {
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return &workflow.AgentRecord{
		ID:     agent.ID,
		Active: agent.Active,
	}
}
