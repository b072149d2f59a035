package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/automarket/automarket/api"
	"github.com/automarket/automarket/internal/api"
	"github.com/automarket/automarket/internal/api/middleware"
	"github.com/automarket/automarket/internal/auth"
	"github.com/automarket/automarket/internal/bid"
	"github.com/automarket/automarket/internal/config"
	"github.com/automarket/automarket/internal/conversation"
	"github.com/automarket/automarket/internal/database"
	"github.com/automarket/automarket/internal/engagement"
	"github.com/automarket/automarket/internal/lifecycle"
	"github.com/automarket/automarket/internal/lock"
	"github.com/automarket/automarket/internal/order"
	"github.com/automarket/automarket/internal/solution"
	"github.com/automarket/automarket/internal/specialist"
	"github.com/automarket/automarket/internal/telemetry"
)

const serviceName = "automarket"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, serviceName, cfg.Version, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	pool := db.Pool()
	accounts := auth.NewRepository(pool)
	profiles := specialist.NewPostgresRepository(pool)
	solutions := solution.NewPostgresRepository(pool)
	bids := bid.NewPostgresRepository(pool)
	conversations := conversation.NewPostgresRepository(pool)
	orders := order.NewPostgresRepository(pool)

	authService := auth.NewService(accounts, cfg.BcryptCost)
	if _, err := authService.BootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("bootstrapping admin account: %w", err)
	}

	resolver := lock.NewResolver(bids, conversations, orders)
	lifecycleService := lifecycle.NewService(db, solutions, profiles, resolver, lifecycle.WithTimeout(cfg.StoreTimeout))
	engagementService := engagement.NewService(db, solutions, bids, conversations, orders, profiles)

	router := api.NewRouter(api.RouterDeps{
		DB:             db,
		Version:        cfg.Version,
		OpenAPISpec:    specpkg.OpenAPISpec,
		Authenticator:  authService,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		AccountIssuer:  authService,
		AccountRepo:    accounts,
		SpecialistRepo: profiles,
		Lifecycle:      lifecycleService,
		Engagements:    engagementService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting automarket server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("serving http: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
