package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"newslive/internal/service"
)

// HandleServiceError 把 Service 层错误映射为 HTTP 状态码和对外的错误信息。
// 未识别的错误只记录日志，对客户端返回通用信息。
func HandleServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		ErrorResponse(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrInvalidInput):
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrSessionInvalid):
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired session")
	case errors.Is(err, service.ErrForbidden):
		ErrorResponse(c, http.StatusForbidden, "You can only modify your own articles")
	case errors.Is(err, service.ErrArticleNotFound):
		ErrorResponse(c, http.StatusNotFound, "Article not found")
	case errors.Is(err, service.ErrEmailTaken):
		ErrorResponse(c, http.StatusConflict, "Email already registered")
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
