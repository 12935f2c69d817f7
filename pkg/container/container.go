package container

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	infraDB "library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/infrastructure/queue"
	"library-backend/pkg/cache"
	"library-backend/pkg/database"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"

	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"

	clientHandler "library-backend/internal/domains/client/handler"
	clientRepo "library-backend/internal/domains/client/repository"
	clientService "library-backend/internal/domains/client/service"

	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"

	inventoryHandler "library-backend/internal/domains/inventory/handler"
	inventoryRepo "library-backend/internal/domains/inventory/repository"
	inventoryService "library-backend/internal/domains/inventory/service"

	borrowingHandler "library-backend/internal/domains/borrowing/handler"
	borrowingRepo "library-backend/internal/domains/borrowing/repository"
	borrowingService "library-backend/internal/domains/borrowing/service"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API and the worker.
type Container struct {
	// ========================================
	// INFRASTRUCTURE
	// ========================================
	Config      *config.Config
	DB          *infraDB.PostgresDB
	Transactor  database.Transactor
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	AsynqClient *asynq.Client
	Publisher   *queue.Publisher
	Metrics     *metrics.Metrics
	JWTManager  *jwt.Manager

	// ========================================
	// REPOSITORIES
	// ========================================
	UserRepo      userRepo.Repository
	BookRepo      bookRepo.RepositoryInterface
	ClientRepo    clientRepo.RepositoryInterface
	InventoryRepo inventoryRepo.RepositoryInterface
	BorrowingRepo borrowingRepo.RepositoryInterface

	// ========================================
	// SERVICES
	// ========================================
	UserService      userService.Service
	BookService      *bookService.BookService
	ClientService    *clientService.ClientService
	InventoryService *inventoryService.InventoryService
	BorrowingService *borrowingService.BorrowingService

	// ========================================
	// HANDLERS
	// ========================================
	UserHandler      *userHandler.UserHandler
	BookHandler      *bookHandler.BookHandler
	ClientHandler    *clientHandler.ClientHandler
	InventoryHandler *inventoryHandler.Handler
	BorrowingHandler *borrowingHandler.BorrowingHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the graph in dependency order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	// STEP 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	logger.Info("Config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	// STEP 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := infraDB.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	c.Transactor = database.NewTransactor(db.Pool)

	// STEP 3: cache and queue; redis being down only degrades the cache
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		logger.Warn("Redis connection failed (non-critical)", map[string]interface{}{"error": err.Error()})
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client, cfg.Redis.KeyPrefix)

	c.AsynqClient = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	c.Publisher = queue.NewPublisher(c.AsynqClient)

	// STEP 4: metrics and tokens
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(reg)
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.Issuer)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	logger.Info("DI container initialized", nil)
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.ClientRepo = clientRepo.NewPostgresRepository(pool)
	c.InventoryRepo = inventoryRepo.NewRepository(pool)
	c.BorrowingRepo = borrowingRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewService(c.UserRepo, c.JWTManager)
	c.BookService = bookService.NewService(c.BookRepo, c.Cache, c.Config.Redis.BookTTL)
	c.ClientService = clientService.NewService(c.ClientRepo)

	// the ledger is shared: borrowings drive it inside their own transaction
	c.InventoryService = inventoryService.NewInventoryService(
		c.InventoryRepo,
		c.Transactor,
		c.Publisher,
		c.Metrics,
	)

	c.BorrowingService = borrowingService.NewService(
		c.BorrowingRepo,
		c.InventoryService,
		c.Transactor,
		c.Metrics,
		borrowingService.Lookups{
			Books:   c.BookService,
			Clients: c.ClientService,
			Users:   c.UserService,
		},
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.ClientHandler = clientHandler.NewClientHandler(c.ClientService)
	c.InventoryHandler = inventoryHandler.NewHandler(c.InventoryService)
	c.BorrowingHandler = borrowingHandler.NewBorrowingHandler(c.BorrowingService)
}

// ========================================
// LIFECYCLE
// ========================================

// Cleanup releases connections; called on graceful shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Warn("Failed to close asynq client", map[string]interface{}{"error": err.Error()})
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Warn("Failed to close Redis", map[string]interface{}{"error": err.Error()})
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logger.Warn("Failed to close database", map[string]interface{}{"error": err.Error()})
		}
	}

	logger.Info("Container cleanup completed", nil)
}
