package routes

import (
	"github.com/chhayaprint/billing-api/internal/auth"
	"github.com/chhayaprint/billing-api/internal/handlers"
	"github.com/chhayaprint/billing-api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	invoiceHandler *handlers.InvoiceHandler,
	authHandler *handlers.AuthHandler,
	tokenManager *auth.TokenManager,
) {
	// Rate limiting config for the login path
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/unlock", authHandler.Unlock)
	router.Get("/auth/check-block", authHandler.CheckBlock)
	router.Post("/auth/logout", authHandler.Logout)

	// Protected routes - admin session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(tokenManager))

		r.Get("/auth/verify", authHandler.Verify)
		invoiceHandler.RegisterRoutes(r)
	})
}
