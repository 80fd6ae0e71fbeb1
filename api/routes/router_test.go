package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	internalagents "github.com/orderdeskhq/orderdesk-backend/internal/agents"
	internalauth "github.com/orderdeskhq/orderdesk-backend/internal/auth"
	internalorders "github.com/orderdeskhq/orderdesk-backend/internal/orders"
	internalusers "github.com/orderdeskhq/orderdesk-backend/internal/users"
	"github.com/orderdeskhq/orderdesk-backend/internal/workflow"
	pkgAuth "github.com/orderdeskhq/orderdesk-backend/pkg/auth"
	"github.com/orderdeskhq/orderdesk-backend/pkg/config"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db/models"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdeskhq/orderdesk-backend/pkg/errors"
	"github.com/orderdeskhq/orderdesk-backend/pkg/pagination"
)

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req internalauth.LoginRequest) (*internalauth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

type stubUsersService struct{}

func (stubUsersService) CreateStaff(ctx context.Context, input internalusers.CreateStaffInput) (*models.User, string, error) {
	return nil, "", pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubUsersService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (stubUsersService) ListCallAgents(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

func (stubUsersService) ResolveCallAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord {
	return nil
}

type stubAgentsService struct{}

func (stubAgentsService) Create(ctx context.Context, input internalagents.CreateAgentInput) (*models.DeliveryAgent, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubAgentsService) Get(ctx context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery agent not found")
}

func (stubAgentsService) List(ctx context.Context, activeOnly bool) ([]models.DeliveryAgent, error) {
	return nil, nil
}

func (stubAgentsService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubAgentsService) ResolveDeliveryAgent(ctx context.Context, id uuid.UUID) *workflow.AgentRecord {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) Get(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) List(ctx context.Context, actor workflow.Actor, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
	return &internalorders.OrderList{}, nil
}

func (stubOrdersService) History(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) ([]models.OrderStatusChange, error) {
	return nil, nil
}

func (stubOrdersService) CallAttempts(ctx context.Context, actor workflow.Actor, orderID uuid.UUID) ([]models.CallAttempt, error) {
	return nil, nil
}

func (stubOrdersService) AssignCallAgent(ctx context.Context, input internalorders.AssignCallAgentInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) LogCallAttempt(ctx context.Context, input internalorders.LogCallAttemptInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) SelectDeliveryAgent(ctx context.Context, input internalorders.SelectDeliveryAgentInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) AssignDeliveryAgent(ctx context.Context, input internalorders.AssignDeliveryAgentInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) FastForward(ctx context.Context, input internalorders.FastForwardInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) UpdateStatus(ctx context.Context, input internalorders.UpdateStatusInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (stubOrdersService) Cancel(ctx context.Context, input internalorders.CancelOrderInput) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "orderdesk",
			ExpirationMinutes: 30,
		},
	}
}

func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(testRouterConfig(), nil, nil, nil, Services{
		Auth:   stubAuthService{},
		Users:  stubUsersService{},
		Agents: stubAgentsService{},
		Orders: stubOrdersService{},
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-OrderDesk-Env"); got != "dev" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestRouterOrdersRequireAuth(t *testing.T) {
	router := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestRouterOrdersWithValidToken(t *testing.T) {
	router := buildTestRouter(t)
	cfg := testRouterConfig()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRouterUsersRequireSuperAdmin(t *testing.T) {
	router := buildTestRouter(t)
	cfg := testRouterConfig()

	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-super-admin, got %d", w.Code)
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	router := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics endpoint, got %d", w.Code)
	}
}
