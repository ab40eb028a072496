package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"idservices-admin/internal/config"
	"idservices-admin/internal/domains/bootconfig"
	statsHandler "idservices-admin/internal/domains/statistics/handler"
	statsJob "idservices-admin/internal/domains/statistics/job"
	statsRepo "idservices-admin/internal/domains/statistics/repository"
	statsService "idservices-admin/internal/domains/statistics/service"
	"idservices-admin/internal/infrastructure/apiclient"
	infraCache "idservices-admin/internal/infrastructure/cache"
	"idservices-admin/internal/infrastructure/queue"
	"idservices-admin/internal/infrastructure/storage"
	"idservices-admin/internal/shared/middleware"
	"idservices-admin/pkg/cache"
	"idservices-admin/pkg/jwt"
)

// Role selects which half of the graph is built.
type Role int

const (
	RoleAPI Role = iota
	RoleWorker
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph of the api and worker binaries.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	Storage     *storage.MinIOStorage // nil when MinIO is unreachable on the API side
	AsynqClient *asynq.Client
	Registry    *apiclient.Client
	Validator   middleware.TokenValidator

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	ExportStatusRepo statsRepo.StatusRepository
	StatisticsSource statsRepo.StatisticsSource

	// ========================================
	// SERVICE LAYER
	// ========================================
	ExportService statsService.ExportService

	// ========================================
	// HANDLER LAYER
	// ========================================
	BootConfigHandler *bootconfig.Handler
	ExportHandler     *statsHandler.ExportHandler

	// ========================================
	// JOB HANDLERS (worker)
	// ========================================
	ExportJob          *statsJob.ExportHandler
	ScheduledExportJob *statsJob.ScheduledExportHandler
	CleanupJob         *statsJob.CleanupHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds the graph in dependency order:
// infrastructure, repositories, services, handlers.
func NewContainer(ctx context.Context, cfg *config.Config, role Role) (*Container, error) {
	log.Info().Str("environment", cfg.App.Environment).Msg("🔧 Initializing DI Container...")

	c := &Container{Config: cfg}

	// ========================================
	// STEP 1: REDIS
	// ========================================
	c.Redis = infraCache.NewRedisClient(cfg.Redis)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Redis.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis)

	// ========================================
	// STEP 2: OBJECT STORAGE
	// ========================================
	store, err := storage.NewMinIOStorage(connectCtx, cfg.MinIO)
	switch {
	case err == nil:
		c.Storage = store
		log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("✅ MinIO connected")
	case role == RoleWorker:
		return nil, fmt.Errorf("failed to init storage: %w", err)
	default:
		// download links stay unavailable until restart
		log.Warn().Err(err).Msg("⚠️  MinIO unavailable (non-critical)")
	}

	// ========================================
	// STEP 3: QUEUE AND REGISTRY CLIENTS
	// ========================================
	if role == RoleAPI {
		c.AsynqClient = asynq.NewClient(RedisClientOpt(cfg.Redis))

		validator, err := newValidator(cfg)
		if err != nil {
			return nil, err
		}
		c.Validator = validator
	} else {
		c.Registry = apiclient.New(apiclient.Config{
			BaseURL: cfg.Registry.APIURL,
			Timeout: cfg.Registry.RequestTimeout,
		})
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers(role)

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// RedisClientOpt maps the redis config to asynq's connection options.
func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func newValidator(cfg *config.Config) (middleware.TokenValidator, error) {
	if cfg.OIDC.PublicKey == "" {
		log.Warn().Msg("⚠️  OIDC_PUBLIC_KEY not set, bearer tokens are NOT verified")
		return middleware.UnverifiedValidator{}, nil
	}
	v, err := jwt.NewVerifier(cfg.OIDC.PublicKey, cfg.OIDC.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init token verifier: %w", err)
	}
	return v, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	c.ExportStatusRepo = statsRepo.NewCacheStatusRepository(c.Cache, c.Config.Export.StatusTTL)
	if c.Registry != nil {
		c.StatisticsSource = statsRepo.NewRegistrySource(c.Registry, c.Config.Registry.ServiceToken)
	}
}

func (c *Container) initServices() {
	var queueClient statsService.Enqueuer
	if c.AsynqClient != nil {
		queueClient = queue.NewClient(c.AsynqClient)
	}

	// a nil *MinIOStorage must not become a non-nil interface
	var store statsService.ObjectStore
	if c.Storage != nil {
		store = c.Storage
	}

	c.ExportService = statsService.NewExportService(
		c.ExportStatusRepo,
		queueClient,
		c.StatisticsSource,
		store,
		statsService.Config{URLExpiry: c.Config.MinIO.URLExpiry},
	)
}

func (c *Container) initHandlers(role Role) {
	if role == RoleAPI {
		c.BootConfigHandler = bootconfig.NewHandler(bootconfig.FromConfig(c.Config))
		c.ExportHandler = statsHandler.NewExportHandler(c.ExportService)
		return
	}

	c.ExportJob = statsJob.NewExportHandler(c.ExportService)
	c.ScheduledExportJob = statsJob.NewScheduledExportHandler(c.ExportService)
	c.CleanupJob = statsJob.NewCleanupHandler(c.Storage)
}

// Cleanup releases connections on shutdown.
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close asynq client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		} else {
			log.Info().Msg("✅ Redis connections closed")
		}
	}

	log.Info().Msg("✅ Container cleanup completed")
}
