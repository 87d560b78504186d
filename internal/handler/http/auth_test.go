package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newslive/internal/service"
)

func TestAuthAPI_RegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	registered := s.register(t, "Alice@Example.com", "alice")
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice@example.com", registered.User.Email)

	w := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn service.AuthResult
	decode(t, w, &loggedIn)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotEqual(t, registered.Token, loggedIn.Token)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	// 两个会话同时有效
	for _, token := range []string{registered.Token, loggedIn.Token} {
		w := s.do(t, http.MethodGet, "/auth/me", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me service.AuthResult
		decode(t, w, &me)
		assert.Equal(t, "alice", me.User.Username)
		assert.Equal(t, token, me.Token)
	}
}

func TestAuthAPI_RegisterValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		body    interface{}
		message string
	}{
		{gin.H{"email": "a@example.com", "username": "a"}, "Missing required fields: email, username, password"},
		{gin.H{"email": "nope", "username": "a", "password": "password123"}, "Invalid email format"},
		{gin.H{"email": "a@example.com", "username": "a", "password": "short"}, "Password must be at least 8 characters"},
		{"{not json", "Invalid request body"},
	}
	for _, tc := range cases {
		w := s.do(t, http.MethodPost, "/auth/register", "", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, tc.message, errorMessage(t, w))
	}
}

func TestAuthAPI_DuplicateRegistrationConflicts(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@example.com", "alice")

	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email": "ALICE@example.com", "username": "other", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", errorMessage(t, w))
}

func TestAuthAPI_LoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice@example.com", "alice")

	wrongPassword := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	unknownEmail := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "ghost@example.com", "password": "password123"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid email or password", errorMessage(t, wrongPassword))

	missing := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestAuthAPI_LogoutInvalidatesSession(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	w := s.do(t, http.MethodPost, "/auth/logout", alice.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/auth/me", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 重复登出和不带令牌登出都成功
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/auth/logout", alice.Token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/auth/logout", "", nil).Code)
}

func TestAuthAPI_UnknownAndExpiredTokens(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com", "alice")

	w := s.do(t, http.MethodGet, "/auth/me", "never-issued-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired session", errorMessage(t, w))

	w = s.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.mr.FastForward(25 * time.Hour)
	w = s.do(t, http.MethodGet, "/auth/me", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "24 小时后会话过期")
}
