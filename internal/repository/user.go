package repository

import (
	"context"
	"time"

	"newslive/internal/domain"
)

// UserRepository 定义了用户数据的存储和检索操作。
type UserRepository interface {
	// Create 保存用户文档、邮箱索引和用户集合。
	// 邮箱唯一性由调用方通过 EmailExists 预先检查，这里不再校验。
	Create(ctx context.Context, user *domain.User) error

	// FindByID 根据用户 ID 查找用户，不存在时返回 ErrUserNotFound。
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByEmail 通过邮箱索引查找用户，不存在时返回 ErrUserNotFound。
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// EmailExists 检查邮箱是否已被注册。
	EmailExists(ctx context.Context, email string) (bool, error)
}

// SessionRepository 定义了会话令牌的存储，过期由存储层负责。
type SessionRepository interface {
	// Create 保存 token -> userID 映射，ttl 到期后自动失效。
	Create(ctx context.Context, token, userID string, ttl time.Duration) error

	// FindUserID 返回令牌对应的用户 ID，令牌不存在或已过期时返回 ErrSessionNotFound。
	FindUserID(ctx context.Context, token string) (string, error)

	// Delete 删除会话，令牌不存在时不报错。
	Delete(ctx context.Context, token string) error
}
