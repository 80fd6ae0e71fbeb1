package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	"github.com/orderdeskhq/orderdesk-backend/pkg/config"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/security"
)

// Service exposes account operations plus the call-agent fact resolution the
// workflow engine's prerequisite checks consume.
type Service interface {
	CreateStaff(ctx context.Context, input CreateStaffInput) (*models.User, string, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListCallAgents(ctx context.Context) ([]models.User, error)
	ResolveCallAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord
}

// CreateStaffInput captures the fields an admin supplies for a new account.
type CreateStaffInput struct {
	Email string
	Name  string
	Phone *string
	Role  enums.UserRole
}

type service struct {
	repo     Repository
	password config.PasswordConfig
}

// NewService builds the users service.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, password: password}, nil
}

// CreateStaff provisions a staff account with a generated temporary password,
// returned in clear exactly once for out-of-band delivery.
func (s *service) CreateStaff(ctx context.Context, input CreateStaffInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.Role.IsValid() || input.Role == enums.UserRoleCustomer {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "role must be a staff or call agent role")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating temporary password")
	}
	hash, err := security.HashPassword(tempPassword, s.password)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Phone:        input.Phone,
		Role:         input.Role,
		Status:       enums.UserStatusActive,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}
	return created, tempPassword, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return user, nil
}

func (s *service) ListCallAgents(ctx context.Context) ([]models.User, error) {
	agents, err := s.repo.ListByRole(ctx, enums.UserRoleCallAgent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing call agents")
	}
	return agents, nil
}

// ResolveCallAgent returns the caller-resolved fact record for a referenced
// user id, or nil when the id does not resolve. Role and status checks stay
// with the prerequisite checker; this only reports what exists.
func (s *service) ResolveCallAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil
	}
	return &workflow.AgentRecord{
		ID:     user.ID,
		Role:   user.Role,
		Active: user.Status == enums.UserStatusActive,
	}
}
