package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// HealthHandler 处理状态和健康检查请求
type HealthHandler struct {
	redis *redis.Client
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(client *redis.Client) *HealthHandler {
	return &HealthHandler{redis: client}
}

// HealthResponse 是健康检查的响应体
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Root 处理 GET /，返回存活信息
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "NewsLive API is running"})
}

// Health 处理 GET /health，检查 Redis 能否响应 PING
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	services := map[string]string{"redis": "healthy"}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		services["redis"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Services: services})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Services: services})
}
