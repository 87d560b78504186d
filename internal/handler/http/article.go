package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"newslive/internal/middleware"
	"newslive/internal/service"
)

// ArticleHandler 封装了文章相关的 HTTP 处理逻辑
type ArticleHandler struct {
	articleService *service.ArticleService
}

// NewArticleHandler 创建 ArticleHandler 实例
func NewArticleHandler(articleService *service.ArticleService) *ArticleHandler {
	if articleService == nil {
		panic("ArticleService cannot be nil for ArticleHandler")
	}
	return &ArticleHandler{articleService: articleService}
}

// CreateArticleRequest 定义创建文章请求的结构体
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// UpdateArticleRequest 定义部分更新请求，缺省字段保持原值
type UpdateArticleRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// List 处理 GET /articles?category=&search=&offset=&limit=
func (h *ArticleHandler) List(c *gin.Context) {
	offset, okOffset := parseNonNegative(c.Query("offset"))
	limit, okLimit := parseNonNegative(c.Query("limit"))
	if !okOffset || !okLimit {
		ErrorResponse(c, http.StatusBadRequest, "offset and limit must be non-negative integers")
		return
	}

	articles, err := h.articleService.List(c.Request.Context(), service.ListArticlesQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, articles)
}

// Get 处理 GET /articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, article)
}

// Create 处理 POST /articles，需要 Auth 中间件
func (h *ArticleHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrSessionInvalid)
		return
	}

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.CreateArticle: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), user, service.CreateArticleInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, article)
}

// Update 处理 PUT /articles/:id，只有作者本人可以修改
func (h *ArticleHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrSessionInvalid)
		return
	}

	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.UpdateArticle: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	article, err := h.articleService.Update(c.Request.Context(), user, c.Param("id"), service.UpdateArticleInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, article)
}

// Delete 处理 DELETE /articles/:id，只有作者本人可以删除
func (h *ArticleHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		HandleServiceError(c, service.ErrSessionInvalid)
		return
	}

	if err := h.articleService.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		HandleServiceError(c, err)
		return
	}
	MessageResponse(c, http.StatusOK, "Article deleted successfully")
}

// parseNonNegative 解析可选的分页参数，空字符串视为 0
func parseNonNegative(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
