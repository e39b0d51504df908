package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/uniassets/assetcart/internal/api"
	"github.com/uniassets/assetcart/internal/backend"
	"github.com/uniassets/assetcart/internal/cart"
	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/internal/repository"
	"github.com/uniassets/assetcart/internal/repository/memory"
	"github.com/uniassets/assetcart/internal/repository/postgres"
	"github.com/uniassets/assetcart/internal/repository/redis"
	"github.com/uniassets/assetcart/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs a failed run and flushes the logger; os.Exit skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("Server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// Borrowers always live in postgres; CART_STORE only picks the cart slot.
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	repos := postgres.NewRepositories(db, logger)
	slot, closeSlot, err := newCartSlot(cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeSlot()
	repos.CartState = slot

	client := backend.NewClient(cfg.Backend, logger)
	sessions := service.NewCartSessions(
		repos.CartState,
		service.NewRequestAdapter(client, logger),
		logger,
		cart.WithDefaultPeriodDays(cfg.Cart.DefaultPeriodDays),
	)

	router := api.NewRouter(cfg, api.Dependencies{
		Repos:    repos,
		Sessions: sessions,
		Products: service.NewCatalogService(client, logger),
		Requests: service.NewRequestService(client, repos.Request, logger),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("cart_store", cfg.Cart.Store),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited", zap.Int("active_carts", sessions.Active()))
	return nil
}

// newCartSlot builds the durable cart store selected by CART_STORE
func newCartSlot(cfg *config.Config, db *sql.DB, logger *zap.Logger) (repository.CartStateRepository, func(), error) {
	switch cfg.Cart.Store {
	case config.CartStoreRedis:
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		ttl := time.Duration(cfg.Cart.TTLHours) * time.Hour
		return redis.NewCartStateRepository(client, cfg.Redis.Namespace, ttl, logger), func() { client.Close() }, nil
	case config.CartStorePostgres:
		return postgres.NewCartStateRepository(db, logger), func() {}, nil
	default:
		logger.Warn("Carts are kept in memory and will not survive a restart")
		return memory.NewCartStateRepository(), func() {}, nil
	}
}
