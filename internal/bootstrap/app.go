package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	appsvc "stocksage/internal/app"
	"stocksage/internal/cache"
	"stocksage/internal/config"
	"stocksage/internal/logger"
	mysqlClient "stocksage/internal/platform/mysql"
	rabbitmqClient "stocksage/internal/platform/rabbitmq"
	redisClient "stocksage/internal/platform/redis"
	"stocksage/internal/repository"
	"stocksage/internal/worker"
)

type App struct {
	Config *config.Config
	Logger zerolog.Logger

	// Optional connections; nil when the configuration does not need them.
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	ShareService  *appsvc.ShareService
	ArchiveWorker *worker.ShareArchiveWorker
	Sweepers      []*worker.ExpirySweeper

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	return NewWithConfig(ctx, cfg, log)
}

// NewWithConfig connects only what cfg enables. Partially opened resources
// are released when a later step fails.
func NewWithConfig(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    log,
		StartedAt: time.Now(),
	}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	var shareRepo *repository.ShareRepository
	if cfg.NeedsMySQL() {
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN(), a.Logger)
		if err != nil {
			return err
		}
		a.MySQL = db

		shareRepo = repository.NewShareRepository(db)
		if err := shareRepo.AutoMigrate(); err != nil {
			return fmt.Errorf("auto migrate tables failed: %w", err)
		}
	}

	var store appsvc.ShareStore
	switch cfg.Share.Backend {
	case config.ShareBackendRedis:
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
		store = cache.NewShareCache(client, cfg.Redis.KeyPrefix)
	case config.ShareBackendMySQL:
		store = shareRepo
		a.addSweeper(shareRepo)
	default:
		memory := repository.NewMemoryShareStore()
		store = memory
		a.addSweeper(memory)
	}

	var (
		archive   appsvc.ShareStore
		publisher appsvc.SharePublisher
	)
	if cfg.Share.ArchiveEnabled {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.MQConn = conn

		a.ArchiveWorker = worker.NewShareArchiveWorker(conn, shareRepo, cfg.RabbitMQ.ArchiveQueue, a.Logger)
		if err := a.ArchiveWorker.Start(ctx); err != nil {
			return fmt.Errorf("start share archive worker failed: %w", err)
		}
		publisher = rabbitmqClient.NewSharePublisher(conn, cfg.RabbitMQ.ArchiveQueue)

		// The archive doubles as the primary store when both are MySQL.
		if cfg.Share.Backend != config.ShareBackendMySQL {
			archive = shareRepo
			a.addSweeper(shareRepo)
		}
	}

	a.ShareService = appsvc.NewShareService(store, archive, publisher, appsvc.ShareOptions{
		DefaultTitle: cfg.Share.DefaultTitle,
		PublicHost:   cfg.Share.PublicHost,
		TTL:          cfg.ShareTTL(),
	}, a.Logger.With().Str("component", "share_service").Logger())

	if cfg.ShareTTL() > 0 {
		for _, sweeper := range a.Sweepers {
			sweeper.Start(ctx)
		}
	}

	a.Logger.Info().
		Str("share_backend", cfg.Share.Backend).
		Bool("archive", cfg.Share.ArchiveEnabled).
		Dur("share_ttl", cfg.ShareTTL()).
		Msg("share service ready")
	return nil
}

func (a *App) addSweeper(purger worker.ExpiredPurger) {
	a.Sweepers = append(a.Sweepers, worker.NewExpirySweeper(purger, a.Config.SweepInterval(), a.Logger))
}

func (a *App) Close() error {
	var closeErr error
	for _, sweeper := range a.Sweepers {
		sweeper.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ArchiveWorker != nil {
		a.ArchiveWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
