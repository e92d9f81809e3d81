// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/avashisht/boutique-be/internal/adapters/db"
	"github.com/avashisht/boutique-be/internal/adapters/failover"
	"github.com/avashisht/boutique-be/internal/adapters/memstore"
	redis_a "github.com/avashisht/boutique-be/internal/adapters/redis_adapter"
	"github.com/avashisht/boutique-be/internal/adapters/storage"
	"github.com/avashisht/boutique-be/internal/core/ports"
	"github.com/avashisht/boutique-be/internal/core/services"
	"github.com/avashisht/boutique-be/internal/handlers"
	"github.com/avashisht/boutique-be/internal/handlers/middleware"
	"github.com/avashisht/boutique-be/internal/pkg/config"
	"github.com/avashisht/boutique-be/internal/pkg/logger"
	"github.com/avashisht/boutique-be/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	applog := logger.SetupLogger("debug", "json")

	applog.Info("starting boutique ledger service",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(applog.Logger)
	if err != nil {
		applog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	applog = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	applog.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.Bool("database_configured", cfg.DatabaseConfigured()),
	)

	ctx := context.Background()

	if cfg.AWS.SecretsManagerSecret != "" {
		sm, err := config.NewAWSSecretsManager(cfg.AWS.Region, cfg.AWS.SecretsManagerSecret, applog.Logger)
		if err != nil {
			applog.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := cfg.ApplySecrets(ctx, sm, applog.Logger); err != nil {
			applog.Error("failed to apply secrets", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	deps, err := initializeDependencies(ctx, cfg, applog)
	if err != nil {
		applog.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, applog)

	serverErrors := make(chan error, 1)
	go func() {
		applog.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		applog.Info("shutdown signal received",
			slog.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			applog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		applog.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database    *db.Database
	redisClient *redis.Client
	asynqClient *asynq.Client
	enqueuer    *workers.Enqueuer
	router      ports.StoreRouter

	transactionHandler *handlers.TransactionHandler
	inventoryHandler   *handlers.InventoryHandler
	analyticsHandler   *handlers.AnalyticsHandler
	healthHandler      *handlers.HealthHandler
}

func (d *dependencies) cleanup() {
	if d.database != nil {
		d.database.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.enqueuer != nil {
		d.enqueuer.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, applog *logger.Logger) (*dependencies, error) {
	deps := &dependencies{}
	slogger := applog.Logger

	// The fallback store always exists; the persistent backend is optional.
	fallbackStore := memstore.NewStore(slogger)
	if err := fallbackStore.SeedAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
		return nil, fmt.Errorf("failed to seed fallback admin: %w", err)
	}
	fallbackSet := ports.StoreSet{
		Backend:      ports.BackendFallback,
		Transactions: fallbackStore.Transactions(),
		Ledger:       fallbackStore.Ledger(),
		Users:        fallbackStore.Users(),
	}

	var primarySet ports.StoreSet
	var pinger failover.Pinger

	if cfg.DatabaseConfigured() {
		slogger.Info("connecting to database",
			slog.String("host", cfg.Database.Host),
			slog.String("database", cfg.Database.Name))

		database, err := db.NewDatabase(ctx, &db.Config{
			Host:               cfg.Database.Host,
			Port:               cfg.Database.Port,
			User:               cfg.Database.User,
			Password:           cfg.Database.Password,
			Database:           cfg.Database.Name,
			SSLMode:            cfg.Database.SSLMode,
			MaxConnections:     cfg.Database.MaxConnections,
			MinConnections:     cfg.Database.MinConnections,
			MaxConnLifetime:    cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
			HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
			ConnectTimeout:     cfg.Database.ConnectTimeout,
			EnableQueryLogging: cfg.Database.EnableQueryLogging,
		}, slogger)
		if err != nil {
			// The service still comes up, pinned to the fallback store.
			slogger.Error("failed to connect to database, starting in fallback mode",
				slog.String("error", err.Error()))
		} else {
			deps.database = database
			pinger = database

			if err := runMigrations(ctx, cfg, slogger); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}

			primarySet = ports.StoreSet{
				Backend:      ports.BackendPrimary,
				Transactions: db.NewTransactionRepository(database, slogger),
				Ledger:       db.NewLedgerRepository(database, slogger),
				Users:        db.NewUserRepository(database, slogger),
			}
		}
	} else {
		slogger.Info("no database configured, running on in-memory fallback store")
	}

	selector := failover.NewSelector(deps.database == nil)
	deps.router = failover.NewRouter(primarySet, fallbackSet, selector, pinger, slogger)

	// Redis backs the analytics cache and the background queue. Both are
	// optional: a missing redis never blocks startup.
	var cache ports.CacheRepository
	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})

	var enqueuer ports.TaskEnqueuer
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slogger.Warn("redis unavailable, caching and background replay disabled",
			slog.String("error", err.Error()))
		redisClient.Close()
	} else {
		deps.redisClient = redisClient
		cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

		deps.asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Asynq.RedisAddr,
			Password: cfg.Asynq.RedisPassword,
			DB:       cfg.Asynq.RedisDB,
		})
		deps.enqueuer = workers.NewEnqueuer(deps.asynqClient, slogger)
		enqueuer = deps.enqueuer
	}

	// Optional export archive.
	var archiver storage.Archiver
	if cfg.AWS.S3Bucket != "" {
		s3Archiver, err := storage.NewS3Archiver(ctx, &storage.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		}, slogger)
		if err != nil {
			slogger.Warn("export archive unavailable",
				slog.String("error", err.Error()))
		} else {
			archiver = s3Archiver
		}
	}

	reconciler := services.NewReconciler(slogger)
	transactionService := services.NewTransactionService(deps.router, reconciler, enqueuer, slogger)
	inventoryService := services.NewInventoryService(deps.router, slogger)
	analyticsService := services.NewAnalyticsService(deps.router, cache, slogger)

	deps.transactionHandler = handlers.NewTransactionHandler(transactionService, analyticsService, slogger)
	deps.inventoryHandler = handlers.NewInventoryHandler(inventoryService, analyticsService, slogger)
	deps.analyticsHandler = handlers.NewAnalyticsHandler(analyticsService, archiver, slogger)
	deps.healthHandler = handlers.NewHealthHandler(deps.router, deps.database, deps.redisClient, cfg, slogger)

	slogger.Info("all dependencies initialized",
		slog.String("backend", string(selector.Current())))
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, applog *logger.Logger) *http.Server {
	mux := http.NewServeMux()

	registerRoutes(mux, deps)

	// Middleware chain, innermost first.
	var handler http.Handler = mux
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)
	handler = middleware.Recovery(applog.Logger)(handler)
	handler = middleware.Logger(applog)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}
	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(applog.Handler(), slog.LevelError),
	}
}

func registerRoutes(mux *http.ServeMux, deps *dependencies) {
	apiV1 := "/api/v1"

	// Health and readiness
	mux.HandleFunc("GET /health", deps.healthHandler.Health)
	mux.HandleFunc("GET /ready", deps.healthHandler.Readiness)
	mux.HandleFunc("GET "+apiV1+"/health/database", deps.healthHandler.DatabaseHealth)

	// Transactions
	mux.HandleFunc("POST "+apiV1+"/transactions", deps.transactionHandler.CreateTransaction)
	mux.HandleFunc("GET "+apiV1+"/transactions", deps.transactionHandler.ListTransactions)
	mux.HandleFunc("GET "+apiV1+"/transactions/{id}", deps.transactionHandler.GetTransaction)
	mux.HandleFunc("PUT "+apiV1+"/transactions/{id}", deps.transactionHandler.UpdateTransaction)
	mux.HandleFunc("DELETE "+apiV1+"/transactions/{id}", deps.transactionHandler.DeleteTransaction)

	// Inventory
	mux.HandleFunc("GET "+apiV1+"/inventory", deps.inventoryHandler.ListItems)
	mux.HandleFunc("GET "+apiV1+"/inventory/{name}", deps.inventoryHandler.GetItem)
	mux.HandleFunc("POST "+apiV1+"/inventory", deps.inventoryHandler.CreateItem)
	mux.HandleFunc("PUT "+apiV1+"/inventory/{name}", deps.inventoryHandler.UpdateItem)
	mux.HandleFunc("DELETE "+apiV1+"/inventory/{name}", deps.inventoryHandler.DeleteItem)

	// Analytics
	mux.HandleFunc("GET "+apiV1+"/analytics/overview", deps.analyticsHandler.Overview)
	mux.HandleFunc("GET "+apiV1+"/analytics/sales-trends", deps.analyticsHandler.SalesTrends)
	mux.HandleFunc("GET "+apiV1+"/analytics/profit-loss", deps.analyticsHandler.ProfitLoss)
	mux.HandleFunc("GET "+apiV1+"/analytics/purchase-analytics", deps.analyticsHandler.PurchaseAnalytics)
	mux.HandleFunc("GET "+apiV1+"/analytics/inventory-insights", deps.analyticsHandler.InventoryInsights)
	mux.HandleFunc("GET "+apiV1+"/analytics/export", deps.analyticsHandler.Export)
}

func runMigrations(ctx context.Context, cfg *config.Config, slogger *slog.Logger) error {
	slogger.Info("running database migrations")

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}

	return db.RunMigrationsWithRetry(ctx, migrationConfig, slogger, 3)
}
