package main

import (
	"context"
	"net/http"
	"os"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"

	"github.com/davegutierrez/shoplite-backend/api/routes"
	"github.com/davegutierrez/shoplite-backend/internal/analytics"
	"github.com/davegutierrez/shoplite-backend/internal/audit"
	"github.com/davegutierrez/shoplite-backend/internal/auth"
	"github.com/davegutierrez/shoplite-backend/internal/categories"
	"github.com/davegutierrez/shoplite-backend/internal/movements"
	"github.com/davegutierrez/shoplite-backend/internal/products"
	"github.com/davegutierrez/shoplite-backend/internal/users"
	"github.com/davegutierrez/shoplite-backend/pkg/auth/session"
	"github.com/davegutierrez/shoplite-backend/pkg/config"
	"github.com/davegutierrez/shoplite-backend/pkg/db"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
	"github.com/davegutierrez/shoplite-backend/pkg/metrics"
	"github.com/davegutierrez/shoplite-backend/pkg/migrate"
	"github.com/davegutierrez/shoplite-backend/pkg/pubsub"
	"github.com/davegutierrez/shoplite-backend/pkg/redis"
	"github.com/davegutierrez/shoplite-backend/pkg/security"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	// The audit topic is optional; rows always land in Postgres.
	var auditPublisher *pubsub.Client
	if cfg.PubSub.AuditTopic != "" {
		auditPublisher, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := auditPublisher.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
	}

	var auditTopic *gcppubsub.Publisher
	if auditPublisher != nil {
		auditTopic = auditPublisher.AuditPublisher()
	}
	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), auditTopic, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	hasher := security.NewHasher(cfg.Password)
	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		RateLimiter:    redisClient,
		Hasher:         hasher,
		JWTConfig:      cfg.JWT,
		RateLimit:      cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner: dbClient,
		Hasher:   hasher,
		Audit:    auditService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(dbClient.DB())
	productsService, err := products.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	categoriesService, err := categories.NewService(categories.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	movementMetrics := metrics.NewMovementMetrics(prometheus.DefaultRegisterer)
	movementsService, err := movements.NewService(
		movements.NewRepository(dbClient.DB()),
		productsRepo,
		dbClient,
		auditService,
		movementMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create movements service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionManager:  sessionManager,
			AuthService:     authService,
			RegisterService: registerService,
			UsersRepo:       usersRepo,
			Products:        productsService,
			Categories:      categoriesService,
			Movements:       movementsService,
			Analytics:       analyticsService,
			Audit:           auditService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
