package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Config 存储从环境变量或 .env 文件加载的配置
type Config struct {
	ServerPort        string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	KeyPrefix         string // Redis key 前缀
	NewsChannel       string // 新文章广播频道
	SessionTTLHours   int
	BcryptCost        int
	LogLevel          string
	AppEnv            string // development / production
	CORSAllowedOrigin string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	AuditSchedule     string // 为空时不启动索引巡检调度
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)，忽略错误，允许只使用环境变量
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:        envOrDefault("SERVER_PORT", "8080"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:         envOrDefault("REDIS_KEY_PREFIX", "newslive:"),
		NewsChannel:       envOrDefault("NEWS_CHANNEL", "news_updates"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		AppEnv:            envOrDefault("APP_ENV", "development"),
		CORSAllowedOrigin: envOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		RateLimitWindow:   time.Second,
	}
	// AUDIT_SCHEDULE 显式设置为空表示关闭调度，所以要区分未设置和空值
	if schedule, ok := os.LookupEnv("AUDIT_SCHEDULE"); ok {
		cfg.AuditSchedule = strings.TrimSpace(schedule)
	} else {
		cfg.AuditSchedule = "@every 10m"
	}

	var err error
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SessionTTLHours, err = envInt("SESSION_TTL_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = envInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = envInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if raw := os.Getenv("RATE_LIMIT_WINDOW"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("environment variable RATE_LIMIT_WINDOW must be a duration (e.g. 1s): %w", err)
		}
		cfg.RateLimitWindow = window
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 日志级别无效时回退到 info，不阻止启动
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate 检查必填项和取值范围。
// ozzo 的 Min 会跳过零值，所以数值字段都要先加 Required。
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RedisAddr, validation.Required.Error("environment variable REDIS_ADDR must be set")),
		validation.Field(&c.ServerPort, validation.Required),
		validation.Field(&c.SessionTTLHours, validation.Required, validation.Min(1)),
		validation.Field(&c.BcryptCost, validation.Required, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.RateLimitMax, validation.Required, validation.Min(1)),
		validation.Field(&c.RateLimitWindow, validation.Required, validation.Min(time.Millisecond)),
	)
}

// IsProduction 报告是否运行在生产环境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return value, nil
}
