package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	httpHandler "newslive/internal/handler/http"
	wsHandler "newslive/internal/handler/websocket"
	"newslive/internal/hub"
	"newslive/internal/infra/setup"
	redisstate "newslive/internal/infra/state/redis"
	"newslive/internal/middleware"
	"newslive/internal/service"
	"newslive/internal/worker"
)

// App 包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	RedisClient *redis.Client
	Hub         *hub.Hub
	Subscriber  *hub.NewsSubscriber
	Worker      *worker.WorkerServer
	Scheduler   *worker.Scheduler // AUDIT_SCHEDULE 为空时为 nil
	HttpServer  *http.Server

	stopSubscriber context.CancelFunc
	subscriberDone chan struct{}
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		// logrus 还没配置好，直接写 stderr
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 配置标准 Logger，各组件通过 logrus 包级函数记录日志
	log := configureLogger(cfg)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// 4. 初始化 Repositories
	userRepo := redisstate.NewUserRepository(redisClient, cfg.KeyPrefix)
	sessionRepo := redisstate.NewSessionRepository(redisClient, cfg.KeyPrefix)
	articleRepo := redisstate.NewArticleRepository(redisClient, cfg.KeyPrefix)
	publisher := redisstate.NewNewsPublisher(redisClient, cfg.NewsChannel)
	log.Info("Repositories initialized")

	// 5. 初始化 Services
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.SessionTTLHours, cfg.BcryptCost)
	articleService := service.NewArticleService(articleRepo, publisher)
	log.Info("Services initialized")

	// 6. 初始化实时推送: Hub 和频道订阅者
	hubInstance := hub.NewHub()
	subscriber := hub.NewNewsSubscriber(redisClient, publisher.Channel(), hubInstance)

	// 7. 初始化后台任务
	workerServer := worker.NewWorkerServer(redisClientOpt, articleRepo, log)
	var scheduler *worker.Scheduler
	if cfg.AuditSchedule != "" {
		scheduler, err = worker.NewScheduler(redisClientOpt, cfg.AuditSchedule, log)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
	} else {
		log.Info("AUDIT_SCHEDULE is empty, periodic index audit disabled")
	}

	// 8. 初始化 Gin Engine 和路由
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigin),
		middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow),
	)
	httpHandler.RegisterRoutes(router, httpHandler.Handlers{
		Auth:      httpHandler.NewAuthHandler(authService),
		Articles:  httpHandler.NewArticleHandler(articleService),
		Health:    httpHandler.NewHealthHandler(redisClient),
		WebSocket: wsHandler.NewWebSocketHandler(hubInstance, cfg.CORSAllowedOrigin).HandleConnection,
	}, authService)
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		RedisClient: redisClient,
		Hub:         hubInstance,
		Subscriber:  subscriber,
		Worker:      workerServer,
		Scheduler:   scheduler,
		HttpServer:  httpServer,
	}, nil
}

// configureLogger 按环境设置标准 logger 的格式和级别
func configureLogger(cfg *Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Infof("Logger initialized (Level: %s, Format: %T)", logLevel.String(), log.Formatter)
	return log
}

// Start 启动所有后台 goroutine 和 HTTP 服务器
func (a *App) Start() {
	go a.Hub.Run()
	a.Log.Info("Hub routine started")

	ctx, cancel := context.WithCancel(context.Background())
	a.stopSubscriber = cancel
	a.subscriberDone = make(chan struct{})
	go func() {
		defer close(a.subscriberDone)
		if err := a.Subscriber.Run(ctx); err != nil {
			// 订阅失败时 API 仍然可用，只是没有实时推送
			a.Log.WithError(err).Error("News subscriber exited")
		}
	}()

	go a.Worker.Start()
	if a.Scheduler != nil {
		go a.Scheduler.Start()
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 先停止接收新请求
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 2. 停止订阅和推送，断开所有 WebSocket 客户端
	if a.stopSubscriber != nil {
		a.stopSubscriber()
		select {
		case <-a.subscriberDone:
		case <-ctx.Done():
			a.Log.Warn("Timed out waiting for news subscriber to stop")
		}
	}
	a.Hub.Stop()

	// 3. 停止后台任务
	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
	a.Worker.Shutdown()

	// 4. 关闭 Redis 连接
	if err := a.RedisClient.Close(); err != nil {
		a.Log.Errorf("Error closing Redis connection: %v", err)
	} else {
		a.Log.Info("Redis connection closed.")
	}

	a.Log.Info("Application shutdown complete.")
}
