package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"newslive/internal/domain"
	"newslive/internal/service"
)

const (
	// ContextUserKey 保存已认证用户 (domain.PublicUser)
	ContextUserKey = "current_user"
	// ContextTokenKey 保存请求携带的会话令牌
	ContextTokenKey = "session_token"
)

// ErrMissingAuthHeader 表示缺少 Authorization 头
var ErrMissingAuthHeader = errors.New("missing Authorization header")

// ErrMalformedAuthHeader 表示 Authorization 头不是 "Bearer <token>" 格式
var ErrMalformedAuthHeader = errors.New("malformed Authorization header")

// SessionResolver 根据会话令牌解析当前用户，由 service.AuthService 实现
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.PublicUser, error)
}

// Auth 返回一个 Gin 中间件，要求请求携带有效的 Bearer 会话令牌。
// 每个请求都会到会话存储中校验令牌。
func Auth(resolver SessionResolver) gin.HandlerFunc {
	if resolver == nil {
		panic("SessionResolver cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		// 1. 从请求头提取 Token
		token, err := ExtractBearerToken(c)
		if err != nil {
			logrus.WithError(err).Debug("Auth middleware: Rejected request without usable bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid authorization header"})
			return
		}

		// 2. 解析会话
		user, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) {
				logrus.Debug("Auth middleware: Invalid or expired session")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
				return
			}
			logrus.WithError(err).Error("Auth middleware: Failed to resolve session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}

		// 3. 设置到 Context，供后续处理程序使用
		c.Set(ContextUserKey, *user)
		c.Set(ContextTokenKey, token)
		logrus.WithField("user_id", user.ID).Debug("Auth middleware: User authenticated")

		c.Next()
	}
}

// OptionalAuth 在令牌有效时设置当前用户，任何认证错误都被忽略，请求继续匿名处理。
func OptionalAuth(resolver SessionResolver) gin.HandlerFunc {
	if resolver == nil {
		panic("SessionResolver cannot be nil for OptionalAuth middleware")
	}

	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c)
		if err != nil {
			c.Next()
			return
		}
		c.Set(ContextTokenKey, token)

		user, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			logrus.WithError(err).Debug("OptionalAuth middleware: Proceeding unauthenticated")
			c.Next()
			return
		}
		c.Set(ContextUserKey, *user)
		c.Next()
	}
}

// CurrentUser 返回 Auth/OptionalAuth 设置的当前用户
func CurrentUser(c *gin.Context) (domain.PublicUser, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return domain.PublicUser{}, false
	}
	user, ok := value.(domain.PublicUser)
	return user, ok
}

// SessionToken 返回请求携带的会话令牌，没有时返回空字符串
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

// ExtractBearerToken 从 Authorization 头中提取 Bearer Token
func ExtractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}
	// Authorization header 格式应为 "Bearer <token>"
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedAuthHeader
	}
	return parts[1], nil
}
