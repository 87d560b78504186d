package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"newslive/internal/domain"
	"newslive/internal/repository"
)

// UserRepository 是 repository.UserRepository 的 Redis 实现
type UserRepository struct {
	client *redis.Client
	keys   keySpace
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(client *redis.Client, keyPrefix string) *UserRepository {
	if client == nil {
		panic("redis client cannot be nil for UserRepository")
	}
	return &UserRepository{client: client, keys: newKeySpace(keyPrefix)}
}

// Create 在一个批次里写入用户文档、邮箱索引和用户集合
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal user %s: %w", user.ID, err)
	}
	err = writeBatch(ctx, r.client, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.user(user.ID), payload, 0)
		pipe.Set(ctx, r.keys.userEmail(user.Email), user.ID, 0)
		pipe.SAdd(ctx, r.keys.users(), user.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: failed to create user %s: %w", user.ID, err)
	}
	return nil
}

// FindByID 根据用户 ID 读取用户文档
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	key := r.keys.user(id)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("redis: failed to get user %s from %s: %w", id, key, err)
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("redis: failed to unmarshal user %s: %w", id, err)
	}
	return &user, nil
}

// FindByEmail 先查邮箱索引拿到 ID，再读取用户文档
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := r.keys.userEmail(email)
	id, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("redis: failed to get email index %s: %w", key, err)
	}
	return r.FindByID(ctx, id)
}

// EmailExists 检查邮箱索引是否存在
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	key := r.keys.userEmail(email)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to check email index %s: %w", key, err)
	}
	return n > 0, nil
}
