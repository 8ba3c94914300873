package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davegutierrez/shoplite-backend/api/controllers"
	"github.com/davegutierrez/shoplite-backend/api/middleware"
	"github.com/davegutierrez/shoplite-backend/internal/analytics"
	"github.com/davegutierrez/shoplite-backend/internal/audit"
	"github.com/davegutierrez/shoplite-backend/internal/auth"
	"github.com/davegutierrez/shoplite-backend/internal/categories"
	movementsvc "github.com/davegutierrez/shoplite-backend/internal/movements"
	"github.com/davegutierrez/shoplite-backend/internal/products"
	"github.com/davegutierrez/shoplite-backend/internal/users"
	"github.com/davegutierrez/shoplite-backend/pkg/auth/session"
	"github.com/davegutierrez/shoplite-backend/pkg/config"
	"github.com/davegutierrez/shoplite-backend/pkg/db"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
	"github.com/davegutierrez/shoplite-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router needs. The list is long enough that a
// struct beats positional arguments.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionManager  sessionManager
	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersRepo       *users.Repository
	Products        products.Service
	Categories      categories.Service
	Movements       movementsvc.Service
	Analytics       analytics.Service
	Audit           *audit.Service
}

// NewRouter wires every endpoint. Mutating ledger routes sit behind the
// idempotency middleware; owner-only surfaces get a role gate on top of the
// checks the services perform themselves.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A nil *redis.Client must stay a nil interface inside the middleware.
	var idempotencyStore redis.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	if d.Redis != nil {
		idempotencyStore = d.Redis
		limiterStore = d.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
	)

	readiness := map[string]controllers.Pinger{}
	if d.DB != nil {
		readiness["postgres"] = d.DB
	}
	if d.Redis != nil {
		readiness["redis"] = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, d.SessionManager, logg)).Post("/logout", controllers.AuthLogout(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(d.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(d.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("owner", logg))
				r.Post("/", controllers.ProductCreate(d.Products, d.Movements, logg))
				r.Patch("/{productId}", controllers.ProductUpdate(d.Products, logg))
				r.Delete("/{productId}", controllers.ProductDeactivate(d.Products, logg))
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(d.Categories, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(d.Categories, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("owner", logg))
				r.Post("/", controllers.CategoryCreate(d.Categories, logg))
				r.Patch("/{categoryId}", controllers.CategoryUpdate(d.Categories, logg))
				r.Delete("/{categoryId}", controllers.CategoryDeactivate(d.Categories, logg))
			})
		})

		r.Route("/movements", func(r chi.Router) {
			r.Get("/", controllers.MovementList(d.Movements, logg))
			r.Get("/types", controllers.MovementTypes(d.Movements, logg))
			r.Get("/{movementId}", controllers.MovementGet(d.Movements, logg))
			r.Post("/", controllers.MovementCreate(d.Movements, logg))
			// The service rejects non-owner cancellations as well.
			r.Post("/{movementId}/cancel", controllers.MovementCancel(d.Movements, logg))
			r.With(middleware.RequireRole("owner", logg)).Post("/verify", controllers.MovementVerify(d.Movements, logg))
		})

		r.Post("/adjustments", controllers.AdjustmentCreate(d.Movements, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole("owner", logg))
			r.Get("/", controllers.UserList(d.UsersRepo, logg))
			r.Post("/", controllers.UserRegister(d.RegisterService, logg))
			r.Delete("/{userId}", controllers.UserDeactivate(d.UsersRepo, d.Audit, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireRole("owner", logg))
			r.Get("/sales", controllers.AnalyticsSales(d.Analytics, logg))
			r.Get("/products", controllers.AnalyticsTopProducts(d.Analytics, logg))
			r.Get("/low-stock", controllers.AnalyticsLowStock(d.Analytics, logg))
		})

		r.With(middleware.RequireRole("owner", logg)).Get("/audit", controllers.AuditListByEntity(d.Audit, logg))
	})

	return r
}
