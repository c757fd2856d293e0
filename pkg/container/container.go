package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/config"
	infraCache "newsroom-backend/internal/infrastructure/cache"
	"newsroom-backend/internal/infrastructure/database"
	"newsroom-backend/internal/infrastructure/queue"
	"newsroom-backend/pkg/cache"
	"newsroom-backend/pkg/jwt"

	// Article domain
	articleHandler "newsroom-backend/internal/domains/article/handler"
	articleJob "newsroom-backend/internal/domains/article/job"
	articleRepo "newsroom-backend/internal/domains/article/repository"
	articleService "newsroom-backend/internal/domains/article/service"

	// User domain
	"newsroom-backend/internal/domains/user"
	userHandler "newsroom-backend/internal/domains/user/handler"
	userJob "newsroom-backend/internal/domains/user/job"
	userRepo "newsroom-backend/internal/domains/user/repository"
	userService "newsroom-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency graph của API + worker.
// APP_STORAGE=postgres: pgx + Redis + asynq; APP_STORAGE=memory: in-process, không cần hạ tầng.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB    // nil khi memory
	Redis       *infraCache.RedisClient // nil khi memory
	Cache       cache.Cache             // Redis hoặc in-memory
	AsynqClient *asynq.Client           // nil khi memory
	JWTManager  *jwt.Manager

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo    user.Repository
	ArticleRepo articleRepo.ArticleRepository
	ViewStore   articleRepo.ViewStore

	// ========================================
	// SERVICE LAYER
	// ========================================
	UserService    user.Service
	ArticleService articleService.ServiceInterface

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	UserHandler    *userHandler.UserHandler
	ArticleHandler *articleHandler.ArticleHandler

	// ========================================
	// JOB HANDLERS (worker)
	// ========================================
	FlushViewsHandler    *articleJob.FlushViewsHandler
	StatusChangedHandler *articleJob.StatusChangedHandler
	FailedLoginHandler   *userJob.FailedLoginHandler

	// background goroutines (memory mode)
	stopBackground context.CancelFunc
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer build theo thứ tự: infrastructure -> repositories -> services -> handlers
func NewContainer(cfg *config.Config) (*Container, error) {
	log.Info().Str("storage", cfg.App.Storage).Msg("🔧 Initializing DI Container...")

	c := &Container{
		Config:     cfg,
		JWTManager: jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL()),
	}

	var err error
	switch cfg.App.Storage {
	case config.StorageMemory:
		c.initMemory()
	default:
		err = c.initPostgres()
	}
	if err != nil {
		c.Cleanup()
		return nil, err
	}
	log.Info().Msg("✅ Repositories initialized")

	c.initServices()
	c.initHandlers()
	c.initJobHandlers()

	if cfg.App.Storage == config.StorageMemory {
		c.startBackground()
		if err := c.seedRedaktur(); err != nil {
			c.Cleanup()
			return nil, err
		}
	}

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

// initPostgres: Postgres + Redis là bắt buộc, lỗi kết nối => không start
func (c *Container) initPostgres() error {
	log.Info().Msg("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	log.Info().Msg("🔴 Connecting to Redis...")
	redisClient := infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	c.Redis = redisClient
	if err := redisClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.Cache = infraCache.NewRedisCache(redisClient.Client)
	c.AsynqClient = queue.NewClient(c.Config.Redis)

	c.UserRepo = userRepo.NewPostgresRepository(db.Pool, c.Cache)
	c.ArticleRepo = articleRepo.NewPostgresArticleRepository(db.Pool)
	c.ViewStore = articleRepo.NewRedisViewStore(redisClient.Client)
	return nil
}

func (c *Container) initMemory() {
	log.Warn().Msg("⚠️  APP_STORAGE=memory: data is lost on restart")

	c.Cache = infraCache.NewMemoryCache()
	c.UserRepo = userRepo.NewMemoryRepository()
	c.ArticleRepo = articleRepo.NewMemoryArticleRepository()
	c.ViewStore = articleRepo.NewMemoryViewStore(c.Cache)
}

func (c *Container) initServices() {
	// Publisher/reporter chỉ có khi có asynq; để nil interface (không phải typed nil)
	var events articleService.EventPublisher
	var failures userService.FailedLoginReporter
	if c.AsynqClient != nil {
		events = articleJob.NewAsynqPublisher(c.AsynqClient, c.Config.Views.EventDelay)
		failures = userJob.NewFailedLoginReporter(c.AsynqClient)
	}

	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager, c.Cache, failures)
	c.ArticleService = articleService.NewArticleService(
		c.ArticleRepo,
		c.ViewStore,
		c.Cache,
		events,
		articleService.Config{
			ViewSessionTTL: c.Config.Views.SessionTTL,
			PublicCacheTTL: c.Config.Views.PublicCacheTTL,
		},
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.ArticleHandler = articleHandler.NewArticleHandler(c.ArticleService)
}

func (c *Container) initJobHandlers() {
	c.FlushViewsHandler = articleJob.NewFlushViewsHandler(c.ArticleRepo, c.ViewStore)
	c.StatusChangedHandler = articleJob.NewStatusChangedHandler(c.Cache)
	c.FailedLoginHandler = userJob.NewFailedLoginHandler(c.Cache)
}

// startBackground: không có worker ở memory mode nên flush lượt xem chạy in-process
func (c *Container) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopBackground = cancel
	go c.FlushViewsHandler.RunEvery(ctx, c.Config.Views.FlushInterval)
}

func (c *Container) seedRedaktur() error {
	if c.Config.Seed.Password == "" {
		log.Warn().Msg("SEED_REDAKTUR_PASSWORD empty, no redaktur account seeded")
		return nil
	}

	dto, created, err := c.UserService.Bootstrap(context.Background(), user.CreateUserRequest{
		Email:    c.Config.Seed.Email,
		Password: c.Config.Seed.Password,
		FullName: c.Config.Seed.FullName,
	})
	if err != nil {
		return fmt.Errorf("seed redaktur: %w", err)
	}
	if created {
		log.Info().Str("email", dto.Email).Msg("✅ Redaktur seeded")
	}
	return nil
}

// ========================================
// LIFECYCLE
// ========================================

// Ping kiểm tra DB + cache, dùng cho /health
func (c *Container) Ping(ctx context.Context) map[string]string {
	status := map[string]string{"storage": c.Config.App.Storage}

	if c.DB != nil {
		status["database"] = "ok"
		if err := c.DB.HealthCheck(ctx); err != nil {
			status["database"] = fmt.Sprintf("error: %v", err)
		}
	}
	if c.Cache != nil {
		status["cache"] = "ok"
		if err := c.Cache.Ping(ctx); err != nil {
			status["cache"] = fmt.Sprintf("error: %v", err)
		}
	}
	return status
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.stopBackground != nil {
		c.stopBackground()
	}
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close asynq client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
