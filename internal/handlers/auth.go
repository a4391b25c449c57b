package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chhayaprint/billing-api/internal/auth"
	"github.com/chhayaprint/billing-api/internal/guard"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/chhayaprint/billing-api/internal/services"
	pkghttp "github.com/chhayaprint/billing-api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, code, ip string) (*services.LoginResult, error)
	CheckBlock(ctx context.Context, ip string) (guard.BlockStatus, error)
	Unlock(ctx context.Context, key, ip string) error
	Verify(token string) (*auth.SessionClaims, error)
}

// AuthHandler handles the admin login flow over HTTP
type AuthHandler struct {
	service  AuthServiceInterface
	tokens   *auth.TokenManager
	cookies  auth.CookieConfig
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, tokens *auth.TokenManager, cookies auth.CookieConfig, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		tokens:   tokens,
		cookies:  cookies,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// UnlockRequest represents the request body for a developer unlock
type UnlockRequest struct {
	Key string `json:"key" validate:"required"`
	IP  string `json:"ip,omitempty"`
}

// loginFailure is the response body for refused login attempts
type loginFailure struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	AttemptsLeft int    `json:"attemptsLeft,omitempty"`
	Blocked      bool   `json:"blocked,omitempty"`
	Permanent    bool   `json:"permanent,omitempty"`
}

// Login verifies the access code and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), req.Code, ip)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrLocked):
			status := http.StatusTooManyRequests
			if result.Permanent {
				status = http.StatusForbidden
			}
			pkghttp.WriteJSON(w, status, loginFailure{
				Error:     result.Message,
				Blocked:   true,
				Permanent: result.Permanent,
			})
		case errors.Is(err, models.ErrInvalidAccessCode):
			pkghttp.WriteJSON(w, http.StatusUnauthorized, loginFailure{
				Error:        "Invalid access code",
				AttemptsLeft: result.AttemptsLeft,
			})
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, result.Token, h.tokens.SessionExpiry(), h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout clears the session cookie. The session token is stateless, so
// dropping the cookie is the whole operation.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Verify reports whether the request carries a valid admin session. The
// dashboard polls this on load to decide between login page and app.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"role":          claims.Role,
	})
}

// CheckBlock reports the lockout state for the caller's IP so the login
// page can disable the form before a doomed attempt.
func (h *AuthHandler) CheckBlock(w http.ResponseWriter, r *http.Request) {
	ip := pkghttp.ExtractClientIP(r, h.ipConfig)

	status, err := h.service.CheckBlock(r.Context(), ip)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, status)
}

// Unlock clears a lockout given the developer unlock key. The target IP
// defaults to the caller's own when the body does not name one.
func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := strings.TrimSpace(req.IP)
	if ip == "" {
		ip = pkghttp.ExtractClientIP(r, h.ipConfig)
	}

	if err := h.service.Unlock(r.Context(), req.Key, ip); err != nil {
		if errors.Is(err, models.ErrInvalidUnlockKey) {
			pkghttp.WriteUnauthorized(w, "Invalid unlock key")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
