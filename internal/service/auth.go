package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"newslive/internal/domain"
	"newslive/internal/repository"
)

const minPasswordLength = 8

// AuthResult 是注册和登录成功后返回给客户端的内容
type AuthResult struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// AuthService 负责用户注册、登录以及会话令牌的签发和解析。
// 会话令牌是不透明的随机 UUID，保存在 Redis 中并带 TTL。
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	sessionTTL  time.Duration
	bcryptCost  int
}

// NewAuthService 创建 AuthService 实例。
// sessionTTLHours <= 0 时使用 24 小时；bcryptCost 不在 bcrypt 允许范围内时使用 bcrypt.DefaultCost。
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, sessionTTLHours, bcryptCost int) *AuthService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if sessionRepo == nil {
		panic("SessionRepository cannot be nil for AuthService")
	}
	if sessionTTLHours <= 0 {
		sessionTTLHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessionTTL:  time.Duration(sessionTTLHours) * time.Hour,
		bcryptCost:  bcryptCost,
	}
}

// SessionTTL 返回新会话的有效期
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// Register 处理用户注册，成功后直接签发一个会话。
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	logCtx := logrus.WithFields(logrus.Fields{"username": username, "email": email})

	// 1. 输入校验
	if err := validateRegistration(email, username, password); err != nil {
		logCtx.WithError(err).Debug("Registration rejected by validation")
		return nil, err
	}

	// 2. 邮箱唯一性只通过邮箱索引检查，并发注册同一邮箱不做防护
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check email index during registration")
		return nil, ErrInternalServer
	}
	if exists {
		logCtx.Warn("Registration failed: email already registered")
		return nil, ErrEmailTaken
	}

	// 3. 哈希密码
	hashedPassword, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 4. 保存用户
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    domain.Timestamp(time.Now()),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: email already registered (repo error)")
			return nil, ErrEmailTaken
		}
		logCtx.WithError(err).Error("Redis error during user creation")
		return nil, ErrInternalServer
	}

	// 5. 签发会话
	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create session after registration")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Login 校验邮箱和密码并签发新会话，已有会话不受影响。
// 邮箱不存在和密码错误返回同一个错误。
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	logCtx := logrus.WithField("email", email)

	if err := validation.Validate(email, validation.Required); err != nil {
		return nil, newValidationError("Missing required fields: email, password")
	}
	if err := validation.Validate(password, validation.Required); err != nil {
		return nil, newValidationError("Missing required fields: email, password")
	}

	// 1. 查找用户
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
			return nil, ErrAuthenticationFailed
		}
		logCtx.WithError(err).Error("Login attempt failed: Error finding user")
		return nil, ErrInternalServer
	}

	// 2. 验证密码
	if !checkPassword(password, user.PasswordHash) {
		logCtx.Warn("Login attempt failed: Invalid password")
		return nil, ErrAuthenticationFailed
	}

	// 3. 签发会话
	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to create session during login")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Logout 删除会话。令牌为空或会话不存在都不是错误。
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ResolveSession 返回令牌对应的用户。令牌缺失、过期或指向不存在的用户时返回 ErrSessionInvalid。
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*domain.PublicUser, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	userID, err := s.sessionRepo.FindUserID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		logrus.WithError(err).Error("Failed to look up session")
		return nil, ErrInternalServer
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logrus.WithField("user_id", userID).Warn("Session references a missing user")
			return nil, ErrSessionInvalid
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load session user")
		return nil, ErrInternalServer
	}

	public := user.Public()
	return &public, nil
}

// --- 私有辅助函数 ---

func (s *AuthService) issueSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.sessionRepo.Create(ctx, token, userID, s.sessionTTL); err != nil {
		return "", err
	}
	return token, nil
}

func validateRegistration(email, username, password string) error {
	missing := validation.Errors{
		"email":    validation.Validate(email, validation.Required),
		"username": validation.Validate(username, validation.Required),
		"password": validation.Validate(password, validation.Required),
	}.Filter()
	if missing != nil {
		return newValidationError("Missing required fields: email, username, password")
	}
	if err := validation.Validate(email, is.EmailFormat); err != nil {
		return newValidationError("Invalid email format")
	}
	if err := validation.Validate(password, validation.RuneLength(minPasswordLength, 0)); err != nil {
		return newValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配
func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
