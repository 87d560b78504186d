package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newslive/internal/middleware"
)

// Handlers 汇总注册路由所需的处理器
type Handlers struct {
	Auth      *AuthHandler
	Articles  *ArticleHandler
	Health    *HealthHandler
	WebSocket gin.HandlerFunc
}

// RegisterRoutes 在 router 上注册全部 HTTP 路由。
// resolver 用于 Auth / OptionalAuth 中间件解析会话令牌。
func RegisterRoutes(router *gin.Engine, h Handlers, resolver middleware.SessionResolver) {
	requireAuth := middleware.Auth(resolver)
	optionalAuth := middleware.OptionalAuth(resolver)

	router.GET("/", h.Health.Root)
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if h.WebSocket != nil {
		router.GET("/ws", h.WebSocket)
	}

	articles := router.Group("/articles")
	{
		articles.GET("", optionalAuth, h.Articles.List)
		articles.GET("/:id", optionalAuth, h.Articles.Get)
		articles.POST("", requireAuth, h.Articles.Create)
		articles.PUT("/:id", requireAuth, h.Articles.Update)
		articles.DELETE("/:id", requireAuth, h.Articles.Delete)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", requireAuth, h.Auth.Me)
	}
}
