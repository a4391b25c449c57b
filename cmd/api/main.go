package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chhayaprint/billing-api/internal/auth"
	"github.com/chhayaprint/billing-api/internal/background"
	"github.com/chhayaprint/billing-api/internal/config"
	"github.com/chhayaprint/billing-api/internal/database"
	"github.com/chhayaprint/billing-api/internal/guard"
	"github.com/chhayaprint/billing-api/internal/handlers"
	middlewareCustom "github.com/chhayaprint/billing-api/internal/middleware"
	"github.com/chhayaprint/billing-api/internal/repositories"
	"github.com/chhayaprint/billing-api/internal/routes"
	"github.com/chhayaprint/billing-api/internal/services"
	pkgauth "github.com/chhayaprint/billing-api/pkg/auth"
	pkghttp "github.com/chhayaprint/billing-api/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
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

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("lockout_policy", cfg.Guard.Policy),
		slog.String("guard_store", cfg.Guard.Store))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := repositories.NewInvoiceRepository(db)

	// Attempt records live in memory by default; GUARD_STORE=postgres
	// keeps them across restarts and across replicas.
	var attemptStore guard.AttemptStore
	switch cfg.Guard.Store {
	case "postgres":
		attemptStore = repositories.NewAttemptStore(db)
	default:
		attemptStore = guard.NewMemoryStore()
	}

	loginGuard := guard.New(attemptStore, guard.Config{
		Policy:          guard.Policy(cfg.Guard.Policy),
		MaxAttempts:     cfg.Guard.MaxAttempts,
		LockoutDuration: cfg.Guard.LockoutDuration,
		AttemptTTL:      cfg.Guard.AttemptTTL,
	}, logger)

	sweeper := background.NewSweeper(loginGuard, logger, cfg.Guard.SweepInterval)

	// Access code verifier and session tokens
	verifier, err := pkgauth.NewAccessCodeVerifier(cfg.Auth.AdminCode, cfg.Auth.AdminCodeHash)
	if err != nil {
		logger.Error("failed to configure access code", slog.Any("error", err))
		os.Exit(1)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)

	// Initialize services
	invoiceService := services.NewInvoiceService(invoiceRepo, logger)
	authService := services.NewAuthService(loginGuard, verifier, tokenManager, cfg.Auth.UnlockKey, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Guard.TrustedProxies}
	cookieConfig := auth.CookieConfig{Secure: cfg.Auth.CookieSecure}

	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	authHandler := handlers.NewAuthHandler(authService, tokenManager, cookieConfig, ipConfig)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, invoiceHandler, authHandler, tokenManager)
	})

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start attempt sweeper
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go sweeper.Start(sweepCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
