package domain

import "time"

// User 表示注册用户。创建后不可变，也不会被删除。
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"` // 只在存储层出现，对外一律使用 PublicUser
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser 是去掉密码哈希后的用户视图。
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public 返回用户的公开视图。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
