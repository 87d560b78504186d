package redisstate_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"newslive/internal/domain"
)

const testPrefix = "test:"

// newTestRedis 启动一个进程内 Redis 并返回连接它的客户端
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newArticle(title string, category domain.Category, createdAt time.Time) *domain.Article {
	ts := domain.Timestamp(createdAt)
	return &domain.Article{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    "content of " + title,
		Category:   category,
		AuthorID:   "author-1",
		AuthorName: "alice",
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

func ids(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}
