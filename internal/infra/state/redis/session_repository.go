package redisstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"newslive/internal/repository"
)

// SessionRepository 是 repository.SessionRepository 的 Redis 实现。
// 会话过期完全依赖 key 的 TTL，没有后台清理。
type SessionRepository struct {
	client *redis.Client
	keys   keySpace
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(client *redis.Client, keyPrefix string) *SessionRepository {
	if client == nil {
		panic("redis client cannot be nil for SessionRepository")
	}
	return &SessionRepository{client: client, keys: newKeySpace(keyPrefix)}
}

func (r *SessionRepository) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	key := r.keys.session(token)
	if err := r.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to create session for user %s: %w", userID, err)
	}
	return nil
}

func (r *SessionRepository) FindUserID(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, r.keys.session(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrSessionNotFound
		}
		return "", fmt.Errorf("redis: failed to get session: %w", err)
	}
	return userID, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.keys.session(token)).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete session: %w", err)
	}
	return nil
}
