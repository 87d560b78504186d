package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"newslive/internal/domain"
	"newslive/internal/repository"
)

// ArticleRepository 是 repository.ArticleRepository 的 Redis 实现。
//
// 文档以 JSON 字符串保存 (单条 SET，读者不会看到写了一半的文档)，
// 按时间索引是 score 为负创建时间的有序集合，升序扫描即最新在前。
type ArticleRepository struct {
	client *redis.Client
	keys   keySpace
	now    func() time.Time
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository 创建 ArticleRepository 实例
func NewArticleRepository(client *redis.Client, keyPrefix string) *ArticleRepository {
	if client == nil {
		panic("redis client cannot be nil for ArticleRepository")
	}
	return &ArticleRepository{
		client: client,
		keys:   newKeySpace(keyPrefix),
		now:    time.Now,
	}
}

// dateScore 返回按时间索引的分数，创建越晚分数越小。
func dateScore(createdAt time.Time) float64 {
	return -float64(createdAt.UnixMilli())
}

// Create 写入文档并加入两个集合索引
func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	payload, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal article %s: %w", article.ID, err)
	}

	err = writeBatch(ctx, r.client, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.article(article.ID), payload, 0)
		pipe.ZAdd(ctx, r.keys.articlesByDate(), &redis.Z{Score: dateScore(article.CreatedAt), Member: article.ID})
		pipe.SAdd(ctx, r.keys.articlesByCategory(article.Category), article.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: failed to create article %s: %w", article.ID, err)
	}
	return nil
}

// FindByID 读取单篇文章
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	key := r.keys.article(id)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrArticleNotFound
		}
		return nil, fmt.Errorf("redis: failed to get article %s from %s: %w", id, key, err)
	}
	var article domain.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal article %s: %w", id, err)
	}
	return &article, nil
}

// ListAll 只取出目标区间的 ID，再一次 MGET 取回文档
func (r *ArticleRepository) ListAll(ctx context.Context, offset, limit int) ([]domain.Article, error) {
	start, stop := rangeBounds(offset, limit)
	key := r.keys.articlesByDate()
	ids, err := r.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to range %s [%d, %d]: %w", key, start, stop, err)
	}
	return r.loadArticles(ctx, ids)
}

// ListByCategory 分类集合本身无序，需要全部取回后在内存中排序再分页
func (r *ArticleRepository) ListByCategory(ctx context.Context, category domain.Category, offset, limit int) ([]domain.Article, error) {
	if !category.IsValid() {
		return []domain.Article{}, nil
	}
	key := r.keys.articlesByCategory(category)
	ids, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to read members of %s: %w", key, err)
	}
	articles, err := r.loadArticles(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(articles)
	return domain.Paginate(articles, offset, limit), nil
}

// SearchByTitle 线性扫描全部文章，没有倒排索引
func (r *ArticleRepository) SearchByTitle(ctx context.Context, query string, offset, limit int) ([]domain.Article, error) {
	key := r.keys.articlesByDate()
	ids, err := r.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to range %s: %w", key, err)
	}
	articles, err := r.loadArticles(ctx, ids)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := articles[:0]
	for _, article := range articles {
		if strings.Contains(strings.ToLower(article.Title), needle) {
			matched = append(matched, article)
		}
	}
	return domain.Paginate(matched, offset, limit), nil
}

// Update 合并字段后重写文档；分类变化时在同一批次里移动分类集合成员。
// 并发更新同一文章时后写者覆盖先写者。
func (r *ArticleRepository) Update(ctx context.Context, id string, update domain.ArticleUpdate) (*domain.Article, error) {
	article, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := article.Apply(update, domain.Timestamp(r.now()))

	payload, err := json.Marshal(article)
	if err != nil {
		return nil, fmt.Errorf("redis: failed to marshal article %s: %w", id, err)
	}

	err = writeBatch(ctx, r.client, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.article(id), payload, 0)
		if previous != article.Category {
			pipe.SRem(ctx, r.keys.articlesByCategory(previous), id)
			pipe.SAdd(ctx, r.keys.articlesByCategory(article.Category), id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis: failed to update article %s: %w", id, err)
	}
	return article, nil
}

// Delete 删除文档及其在两个索引中的成员
func (r *ArticleRepository) Delete(ctx context.Context, id string) (bool, error) {
	article, err := r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return false, nil
		}
		return false, err
	}

	err = writeBatch(ctx, r.client, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.keys.article(id))
		pipe.ZRem(ctx, r.keys.articlesByDate(), id)
		pipe.SRem(ctx, r.keys.articlesByCategory(article.Category), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis: failed to delete article %s: %w", id, err)
	}
	return true, nil
}

// AuditIndexes 找出指向不存在文档的索引项
func (r *ArticleRepository) AuditIndexes(ctx context.Context) (*domain.IndexAuditReport, error) {
	byDateKey := r.keys.articlesByDate()
	ids, err := r.client.ZRange(ctx, byDateKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to range %s: %w", byDateKey, err)
	}
	dangling, err := r.missingDocuments(ctx, ids)
	if err != nil {
		return nil, err
	}

	report := &domain.IndexAuditReport{
		IndexedByDate:      len(ids),
		DanglingByDate:     dangling,
		DanglingByCategory: make(map[domain.Category][]string, len(domain.Categories)),
	}
	for _, category := range domain.Categories {
		key := r.keys.articlesByCategory(category)
		members, err := r.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis: failed to read members of %s: %w", key, err)
		}
		missing, err := r.missingDocuments(ctx, members)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			report.DanglingByCategory[category] = missing
		}
	}
	return report, nil
}

// loadArticles 用一次 MGET 解析出 ID 对应的文档，缺失或损坏的文档被跳过
func (r *ArticleRepository) loadArticles(ctx context.Context, ids []string) ([]domain.Article, error) {
	articles := make([]domain.Article, 0, len(ids))
	if len(ids) == 0 {
		return articles, nil
	}

	values, err := r.client.MGet(ctx, r.articleKeys(ids)...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to mget %d articles: %w", len(ids), err)
	}
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			logrus.WithField("article_id", ids[i]).Debug("redis: index entry without document, skipped")
			continue
		}
		var article domain.Article
		if err := json.Unmarshal([]byte(raw), &article); err != nil {
			logrus.WithField("article_id", ids[i]).WithError(err).Warn("redis: failed to unmarshal article, skipped")
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (r *ArticleRepository) missingDocuments(ctx context.Context, ids []string) ([]string, error) {
	missing := []string{}
	if len(ids) == 0 {
		return missing, nil
	}
	values, err := r.client.MGet(ctx, r.articleKeys(ids)...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to mget %d articles: %w", len(ids), err)
	}
	for i, value := range values {
		if value == nil {
			missing = append(missing, ids[i])
		}
	}
	return missing, nil
}

func (r *ArticleRepository) articleKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.article(id)
	}
	return keys
}

// rangeBounds 把 offset/limit 转换为 ZRANGE 的闭区间。
// stop 超过 math.MaxInt64 时按 -1 (到末尾) 处理。
func rangeBounds(offset, limit int) (int64, int64) {
	if offset < 0 {
		offset = 0
	}
	start := int64(offset)
	if limit <= 0 || int64(limit) > math.MaxInt64-start {
		return start, -1
	}
	return start, start + int64(limit) - 1
}

func sortNewestFirst(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
}
