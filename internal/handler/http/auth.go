package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"newslive/internal/middleware"
	"newslive/internal/service"
)

// AuthHandler 封装了与用户认证相关的 HTTP 处理逻辑
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	if authService == nil {
		panic("AuthService cannot be nil for AuthHandler")
	}
	return &AuthHandler{authService: authService}
}

// RegisterRequest 定义注册请求的结构体。字段校验在 Service 层完成
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest 定义登录请求的结构体
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register 处理 POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Register: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, result)
}

// Login 处理 POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, result)
}

// Logout 处理 POST /auth/logout。幂等，任何情况下都返回 200
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := middleware.ExtractBearerToken(c)
	if err == nil {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			logrus.WithError(err).Error("Handler.Logout: Failed to delete session")
		}
	}
	MessageResponse(c, http.StatusOK, "Logged out successfully")
}

// Me 处理 GET /auth/me，需要 Auth 中间件
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrSessionInvalid)
		return
	}
	SuccessResponse(c, http.StatusOK, service.AuthResult{User: user, Token: middleware.SessionToken(c)})
}
