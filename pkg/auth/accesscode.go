package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 14

// AccessCodeVerifier checks a submitted access code against the configured
// secret. When a bcrypt hash is configured it takes precedence; otherwise
// the plain code from the environment is compared in constant time.
type AccessCodeVerifier struct {
	plainCode string
	codeHash  string
}

// NewAccessCodeVerifier builds a verifier from config values. At least one
// of plainCode or codeHash must be non-empty.
func NewAccessCodeVerifier(plainCode, codeHash string) (*AccessCodeVerifier, error) {
	if plainCode == "" && codeHash == "" {
		return nil, fmt.Errorf("no access code configured")
	}
	return &AccessCodeVerifier{plainCode: plainCode, codeHash: codeHash}, nil
}

// Verify reports whether the submitted code matches the configured secret.
func (v *AccessCodeVerifier) Verify(code string) bool {
	if code == "" {
		return false
	}
	if v.codeHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(v.codeHash), []byte(code)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(v.plainCode), []byte(code)) == 1
}

// HashAccessCode produces a bcrypt hash suitable for ADMIN_CODE_HASH.
func HashAccessCode(code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("access code cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash access code: %w", err)
	}
	return string(hashed), nil
}
