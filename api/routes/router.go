package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderdeskhq/orderdesk-backend/api/controllers"
	"github.com/orderdeskhq/orderdesk-backend/api/middleware"
	"github.com/orderdeskhq/orderdesk-backend/internal/agents"
	"github.com/orderdeskhq/orderdesk-backend/internal/auth"
	"github.com/orderdeskhq/orderdesk-backend/internal/orders"
	"github.com/orderdeskhq/orderdesk-backend/internal/users"
	"github.com/orderdeskhq/orderdesk-backend/pkg/config"
	"github.com/orderdeskhq/orderdesk-backend/pkg/db"
	"github.com/orderdeskhq/orderdesk-backend/pkg/enums"
	"github.com/orderdeskhq/orderdesk-backend/pkg/logger"
	pkgredis "github.com/orderdeskhq/orderdesk-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth   auth.Service
	Users  users.Service
	Agents agents.Service
	Orders orders.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps(dbClient, redisClient)))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	var idemStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Idempotency.TTL, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.With(middleware.RequireStaff(logg)).Post("/", controllers.OrderCreate(svcs.Orders, logg))

			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", controllers.OrderGet(svcs.Orders, logg))
				r.Get("/history", controllers.OrderHistory(svcs.Orders, logg))
				r.Get("/call-attempts", controllers.OrderCallAttempts(svcs.Orders, logg))

				r.Post("/assign-call-agent", controllers.OrderAssignCallAgent(svcs.Orders, logg))
				r.Post("/call-attempts", controllers.OrderLogCallAttempt(svcs.Orders, logg))
				r.Post("/select-delivery-agent", controllers.OrderSelectDeliveryAgent(svcs.Orders, logg))
				r.Post("/assign-delivery-agent", controllers.OrderAssignDeliveryAgent(svcs.Orders, logg))
				r.Post("/fast-forward", controllers.OrderFastForward(svcs.Orders, logg))
				r.Post("/cancel", controllers.OrderCancel(svcs.Orders, logg))
				r.Patch("/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
			})
		})

		r.Route("/call-agents", func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Get("/", controllers.UserListCallAgents(svcs.Users, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleSuperAdmin, logg))
			r.Post("/", controllers.UserCreateStaff(svcs.Users, logg))
			r.Get("/{userID}", controllers.UserGet(svcs.Users, logg))
		})

		r.Route("/delivery-agents", func(r chi.Router) {
			r.Get("/", controllers.AgentList(svcs.Agents, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Post("/", controllers.AgentCreate(svcs.Agents, logg))
				r.Get("/{agentID}", controllers.AgentGet(svcs.Agents, logg))
				r.Patch("/{agentID}/active", controllers.AgentSetActive(svcs.Agents, logg))
			})
		})
	})

	return r
}

func readyDeps(dbClient *db.Client, redisClient *pkgredis.Client) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if dbClient != nil {
		deps["database"] = dbClient
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	return deps
}
