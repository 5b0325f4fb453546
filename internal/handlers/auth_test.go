package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/services"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *services.TokenService) {
	t.Helper()
	tokens := services.NewTokenService("handler-test-secret", time.Hour)
	return NewAuthHandler(services.NewAuthService(database.NewMemoryStore(), tokens, zap.NewNop()), zap.NewNop()), tokens
}

func TestSignupThenLogin(t *testing.T) {
	h, tokens := newAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"email":"  sam@example.com ","password":"hunter22"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var signup AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signup))
	assert.Equal(t, "sam@example.com", signup.User.Email)
	assert.NotContains(t, rec.Body.String(), "hunter22")

	signupID, err := tokens.Verify(signup.Token)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"sam@example.com","password":"hunter22"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var login AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	loginID, err := tokens.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, signupID, loginID)
}

func TestSignupRejectsBadEmail(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Signup(rec, httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"email":"not-an-email","password":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Type)
	assert.Contains(t, body.Error, "email")
}

func TestLoginMalformedBody(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}
