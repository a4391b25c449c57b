package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chhayaprint/billing-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-characters-long!!"

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 24*time.Hour)

	token, err := tm.GenerateSessionToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, auth.AdminRole, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 24*time.Hour)
	other := auth.NewTokenManager("another-secret-32-characters-ok!", 24*time.Hour)

	token, err := tm.GenerateSessionToken()
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, -1*time.Minute)

	token, err := tm.GenerateSessionToken()
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestRequireAdmin_AcceptsCookie(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 24*time.Hour)
	token, err := tm.GenerateSessionToken()
	require.NoError(t, err)

	handler := auth.RequireAdmin(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetSessionFromContext(r)
		require.NotNil(t, claims)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/invoices", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_AcceptsBearerHeader(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 24*time.Hour)
	token, err := tm.GenerateSessionToken()
	require.NoError(t, err)

	handler := auth.RequireAdmin(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_RejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 24*time.Hour)

	handler := auth.RequireAdmin(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/invoices", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_RejectsGarbageToken(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, 24*time.Hour)

	handler := auth.RequireAdmin(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/invoices", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "not-a-jwt"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
