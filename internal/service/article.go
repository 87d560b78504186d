package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"newslive/internal/domain"
	"newslive/internal/metrics"
	"newslive/internal/repository"
)

// CreateArticleInput 是创建文章时客户端提供的字段
type CreateArticleInput struct {
	Title    string
	Content  string
	Category string
}

// UpdateArticleInput 是部分更新；nil 字段保持原值
type UpdateArticleInput struct {
	Title    *string
	Content  *string
	Category *string
}

// ListArticlesQuery 是文章列表的过滤和分页参数。
// Offset < 0 视为 0，Limit <= 0 表示不限制。
type ListArticlesQuery struct {
	Category string
	Search   string
	Offset   int
	Limit    int
}

// ArticleService 负责文章相关的业务规则: 输入校验、作者归属检查，
// 以及创建成功后发布 new_article 通知。
type ArticleService struct {
	articleRepo repository.ArticleRepository
	publisher   repository.ArticleEventPublisher
	now         func() time.Time
}

// NewArticleService 创建 ArticleService 实例
func NewArticleService(articleRepo repository.ArticleRepository, publisher repository.ArticleEventPublisher) *ArticleService {
	if articleRepo == nil {
		panic("ArticleRepository cannot be nil for ArticleService")
	}
	if publisher == nil {
		panic("ArticleEventPublisher cannot be nil for ArticleService")
	}
	return &ArticleService{
		articleRepo: articleRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Create 校验输入、保存文章，然后尽力发布 new_article 通知。
// 发布失败只记录日志，文章仍然创建成功。
func (s *ArticleService) Create(ctx context.Context, author domain.PublicUser, in CreateArticleInput) (*domain.Article, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": author.ID, "category": in.Category})

	if err := validateNewArticle(in); err != nil {
		return nil, err
	}

	ts := domain.Timestamp(s.now())
	article := &domain.Article{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Content:    in.Content,
		Category:   domain.Category(in.Category),
		AuthorID:   author.ID,
		AuthorName: author.Username,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		logCtx.WithError(err).Error("Failed to save article")
		return nil, ErrInternalServer
	}
	logCtx = logCtx.WithField("article_id", article.ID)

	err := s.publisher.PublishNewArticle(ctx, *article)
	metrics.ObservePublish(err)
	if err != nil {
		logCtx.WithError(err).Warn("Article saved but new_article notification was not published")
	}

	logCtx.Info("Article created")
	return article, nil
}

// Get 按 ID 读取文章
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapArticleRepoError(err, id)
	}
	return article, nil
}

// List 返回按创建时间倒序的文章。
// 同时给出分类和搜索词时，先取分类列表，再按标题过滤，最后分页。
func (s *ArticleService) List(ctx context.Context, q ListArticlesQuery) ([]domain.Article, error) {
	search := strings.TrimSpace(q.Search)

	var (
		articles []domain.Article
		err      error
	)
	switch {
	case q.Category != "":
		category := domain.Category(q.Category)
		if !category.IsValid() {
			return nil, invalidCategoryError()
		}
		if search == "" {
			articles, err = s.articleRepo.ListByCategory(ctx, category, q.Offset, q.Limit)
			break
		}
		articles, err = s.articleRepo.ListByCategory(ctx, category, 0, 0)
		if err == nil {
			articles = domain.Paginate(filterByTitle(articles, search), q.Offset, q.Limit)
		}
	case search != "":
		articles, err = s.articleRepo.SearchByTitle(ctx, search, q.Offset, q.Limit)
	default:
		articles, err = s.articleRepo.ListAll(ctx, q.Offset, q.Limit)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{"category": q.Category, "search": search}).WithError(err).Error("Failed to list articles")
		return nil, ErrInternalServer
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

// Update 只允许作者本人修改文章。检查顺序: 输入校验，文章是否存在，归属。
// 没有并发控制，同一文章的并发更新以最后写入为准。
func (s *ArticleService) Update(ctx context.Context, actor domain.PublicUser, id string, in UpdateArticleInput) (*domain.Article, error) {
	update, err := buildArticleUpdate(in)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.Update(ctx, id, update)
	if err != nil {
		return nil, mapArticleRepoError(err, id)
	}
	logrus.WithFields(logrus.Fields{"user_id": actor.ID, "article_id": id}).Info("Article updated")
	return article, nil
}

// Delete 只允许作者本人删除文章
func (s *ArticleService) Delete(ctx context.Context, actor domain.PublicUser, id string) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}

	existed, err := s.articleRepo.Delete(ctx, id)
	if err != nil {
		return mapArticleRepoError(err, id)
	}
	if !existed {
		return ErrArticleNotFound
	}
	logrus.WithFields(logrus.Fields{"user_id": actor.ID, "article_id": id}).Info("Article deleted")
	return nil
}

// --- 私有辅助函数 ---

func (s *ArticleService) authorize(ctx context.Context, actor domain.PublicUser, id string) error {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return mapArticleRepoError(err, id)
	}
	if article.AuthorID != actor.ID {
		logrus.WithFields(logrus.Fields{
			"user_id":    actor.ID,
			"article_id": id,
			"author_id":  article.AuthorID,
		}).Warn("Rejected modification of another user's article")
		return ErrForbidden
	}
	return nil
}

func mapArticleRepoError(err error, id string) error {
	if errors.Is(err, repository.ErrArticleNotFound) {
		return ErrArticleNotFound
	}
	logrus.WithField("article_id", id).WithError(err).Error("Article repository error")
	return ErrInternalServer
}

func validateNewArticle(in CreateArticleInput) error {
	missing := validation.Errors{
		"title":    validation.Validate(strings.TrimSpace(in.Title), validation.Required),
		"content":  validation.Validate(strings.TrimSpace(in.Content), validation.Required),
		"category": validation.Validate(in.Category, validation.Required),
	}.Filter()
	if missing != nil {
		return newValidationError("Missing required fields: title, content, category")
	}
	if !domain.Category(in.Category).IsValid() {
		return invalidCategoryError()
	}
	return nil
}

func buildArticleUpdate(in UpdateArticleInput) (domain.ArticleUpdate, error) {
	var update domain.ArticleUpdate
	if in.Category != nil {
		category := domain.Category(*in.Category)
		if !category.IsValid() {
			return update, invalidCategoryError()
		}
		update.Category = &category
	}
	if in.Title != nil {
		if err := validation.Validate(strings.TrimSpace(*in.Title), validation.Required); err != nil {
			return update, newValidationError("Title cannot be empty")
		}
		update.Title = in.Title
	}
	if in.Content != nil {
		if err := validation.Validate(strings.TrimSpace(*in.Content), validation.Required); err != nil {
			return update, newValidationError("Content cannot be empty")
		}
		update.Content = in.Content
	}
	return update, nil
}

func invalidCategoryError() error {
	return newValidationError(fmt.Sprintf("Invalid category. Must be one of: %s", domain.CategoryNames()))
}

func filterByTitle(articles []domain.Article, query string) []domain.Article {
	needle := strings.ToLower(query)
	matched := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if strings.Contains(strings.ToLower(article.Title), needle) {
			matched = append(matched, article)
		}
	}
	return matched
}

