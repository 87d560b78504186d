package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpHandler "newslive/internal/handler/http"
	redisstate "newslive/internal/infra/state/redis"
	"newslive/internal/service"
)

const testPrefix = "test:"

type testServer struct {
	router *gin.Engine
	mr     *miniredis.Miniredis
	client *redis.Client
}

// newTestServer 用 miniredis 组装真实的仓库、Service 和路由
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	userRepo := redisstate.NewUserRepository(client, testPrefix)
	sessionRepo := redisstate.NewSessionRepository(client, testPrefix)
	articleRepo := redisstate.NewArticleRepository(client, testPrefix)
	publisher := redisstate.NewNewsPublisher(client, redisstate.DefaultNewsChannel)

	authService := service.NewAuthService(userRepo, sessionRepo, 24, bcrypt.MinCost)
	articleService := service.NewArticleService(articleRepo, publisher)

	router := gin.New()
	httpHandler.RegisterRoutes(router, httpHandler.Handlers{
		Auth:     httpHandler.NewAuthHandler(authService),
		Articles: httpHandler.NewArticleHandler(articleService),
		Health:   httpHandler.NewHealthHandler(client),
	}, authService)

	return &testServer{router: router, mr: mr, client: client}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email, username string) service.AuthResult {
	t.Helper()
	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email": email, "username": username, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result service.AuthResult
	decode(t, w, &result)
	return result
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}
