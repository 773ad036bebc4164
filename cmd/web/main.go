package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BradenHooton/classdesk/internal/apiclient"
	"github.com/BradenHooton/classdesk/internal/auth"
	"github.com/BradenHooton/classdesk/internal/background"
	"github.com/BradenHooton/classdesk/internal/config"
	"github.com/BradenHooton/classdesk/internal/database"
	"github.com/BradenHooton/classdesk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/classdesk/internal/middleware"
	"github.com/BradenHooton/classdesk/internal/repositories"
	"github.com/BradenHooton/classdesk/internal/routes"
	"github.com/BradenHooton/classdesk/internal/services"
	"github.com/BradenHooton/classdesk/internal/telemetry"
	"github.com/BradenHooton/classdesk/migrations"
	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Server.Env)
	if err != nil {
		logger.Error("failed to set up tracing", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize database
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Audit trail
	auditRepo := repositories.NewAuditLogRepository(db)
	auditService := services.NewAuditService(auditRepo, logger)

	// Platform API
	apiClient, err := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		logger.Error("failed to create api client", slog.Any("error", err))
		os.Exit(1)
	}

	confirmations := auth.NewConfirmationManager(cfg.Auth.ConfirmationSecret, cfg.Auth.ConfirmationTTL)
	cleanupManager := background.NewCleanupManager(auditService, confirmations, cfg.Audit.RetentionDays, logger, cfg.Audit.CleanupInterval)

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Console views
	console := handlers.NewConsole(handlers.ConsoleDeps{
		Confirmations: confirmations,
		Audit:         auditService,
		Logger:        logger,
		IPConfig:      ipConfig,
		LoginURL:      cfg.Auth.LoginURL,
	})
	handlers.RegisterViews(console, handlers.NewSources(apiClient, auditService))

	cookies := auth.CookieConfig{
		Name:     cfg.API.SessionCookie,
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{
		Env:           cfg.Server.Env,
		ScriptSources: "https://unpkg.com",
	}))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Register routes
	routes.RegisterRoutes(
		router,
		console,
		handlers.NewHealthHandler(db),
		apiClient,
		cookies,
		cfg.Auth.LoginURL,
		middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.DeletesPerMin},
		logger,
	)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(router, "classdesk"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(ctx)
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped gracefully")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
