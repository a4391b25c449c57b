package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/chhayaprint/billing-api/internal/auth"
	"github.com/chhayaprint/billing-api/internal/guard"
	"github.com/chhayaprint/billing-api/internal/models"
	pkgauth "github.com/chhayaprint/billing-api/pkg/auth"
	pkglogger "github.com/chhayaprint/billing-api/pkg/logger"
)

// LoginResult reports the outcome of a login attempt. Token is set only on
// success; the remaining fields let the handler render guard state.
type LoginResult struct {
	Token        string
	AttemptsLeft int
	Blocked      bool
	Permanent    bool
	Message      string
}

// AuthService orchestrates the login flow: guard check, access-code
// verification, attempt recording, session minting.
type AuthService struct {
	guard     *guard.Guard
	verifier  *pkgauth.AccessCodeVerifier
	tokens    *auth.TokenManager
	unlockKey string
	logger    *slog.Logger
	audit     *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(g *guard.Guard, verifier *pkgauth.AccessCodeVerifier, tokens *auth.TokenManager, unlockKey string, logger *slog.Logger) *AuthService {
	return &AuthService{
		guard:     g,
		verifier:  verifier,
		tokens:    tokens,
		unlockKey: unlockKey,
		logger:    logger,
		audit:     pkglogger.NewAuditLogger(logger),
	}
}

// Login verifies the access code for a client IP. The guard is consulted
// first: a locked IP is refused without the code even being compared, and
// the refusal does not advance the failure counter.
func (s *AuthService) Login(ctx context.Context, code, ip string) (*LoginResult, error) {
	status, err := s.guard.CheckBlock(ctx, ip)
	if err != nil {
		return nil, err
	}
	if status.Blocked {
		return &LoginResult{
			Blocked:   true,
			Permanent: status.Permanent,
			Message:   status.Message,
		}, models.ErrLocked
	}

	ok := s.verifier.Verify(code)

	outcome, err := s.guard.RecordAttempt(ctx, ip, ok)
	if err != nil {
		return nil, err
	}

	if !ok {
		s.logger.Warn("failed login attempt",
			slog.String("ip", ip),
			slog.String("code", pkglogger.MaskedCode(code)),
			slog.Int("attempts_left", outcome.AttemptsLeft))
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login",
			IPAddress:     ip,
			FailureReason: "invalid_access_code",
		})
		if outcome.Blocked {
			s.audit.LogLockoutChange("lockout_applied", ip, map[string]string{
				"permanent": fmt.Sprintf("%t", outcome.Permanent),
			})
		}

		result := &LoginResult{
			AttemptsLeft: outcome.AttemptsLeft,
			Blocked:      outcome.Blocked,
			Permanent:    outcome.Permanent,
			Message:      outcome.Message,
		}
		if outcome.Blocked {
			return result, models.ErrLocked
		}
		return result, models.ErrInvalidAccessCode
	}

	token, err := s.tokens.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to mint session: %w", err)
	}

	s.logger.Info("admin login", slog.String("ip", ip))
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login",
		IPAddress: ip,
		Success:   true,
	})
	return &LoginResult{Token: token}, nil
}

// CheckBlock exposes the guard's read-only lockout state for the login page.
func (s *AuthService) CheckBlock(ctx context.Context, ip string) (guard.BlockStatus, error) {
	return s.guard.CheckBlock(ctx, ip)
}

// Unlock clears the lockout for an IP when the developer unlock key
// matches. Compared in constant time like the access code.
func (s *AuthService) Unlock(ctx context.Context, key, ip string) error {
	if s.unlockKey == "" ||
		subtle.ConstantTimeCompare([]byte(s.unlockKey), []byte(key)) != 1 {
		s.logger.Warn("unlock refused", slog.String("ip", ip))
		return models.ErrInvalidUnlockKey
	}
	if err := s.guard.Unlock(ctx, ip); err != nil {
		return err
	}
	s.audit.LogLockoutChange("lockout_cleared", ip, nil)
	return nil
}

// Verify validates a session token and returns its claims.
func (s *AuthService) Verify(token string) (*auth.SessionClaims, error) {
	return s.tokens.ValidateToken(token)
}
