package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "token-test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(testSecret, "alice", time.Hour)
	require.NoError(t, err)

	userID, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestVerifyTokenRejections(t *testing.T) {
	valid, err := IssueToken(testSecret, "alice", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, "")
	assert.Error(t, err)

	_, err = VerifyToken("wrong-secret", valid)
	assert.Error(t, err)

	expired, err := IssueToken(testSecret, "alice", -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(testSecret, expired)
	assert.Error(t, err)

	// Well-signed but without the userId claim.
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := anonymous.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = VerifyToken(testSecret, signed)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	token, err := IssueToken(testSecret, "alice", time.Hour)
	require.NoError(t, err)

	var gotUserID string
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	// Bearer header.
	req := httptest.NewRequest(http.MethodGet, "/api/chat/conversations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "alice", gotUserID)

	// Legacy x-auth-token header.
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations", nil)
	req.Header.Set("x-auth-token", token)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// No token at all.
	req = httptest.NewRequest(http.MethodGet, "/api/chat/conversations", nil)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
