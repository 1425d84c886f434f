package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aliskhannn/boulder-progress/internal/config"
	"github.com/aliskhannn/boulder-progress/internal/delivery/telegram"
	"github.com/aliskhannn/boulder-progress/internal/infra/cache"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
	"github.com/aliskhannn/boulder-progress/internal/infra/postgres/repository"
	"github.com/aliskhannn/boulder-progress/internal/logger"
	"github.com/aliskhannn/boulder-progress/internal/metrics"
	"github.com/aliskhannn/boulder-progress/internal/service"
)

// app holds the wired dependencies shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redis.Client
	metrics *metrics.Metrics

	auth     *service.AuthService
	catalog  *service.CatalogService
	progress *service.ProgressService
	reset    *service.ResetService
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, log, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dsn, err := cfg.DB.DSN()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        cfg.DB.MaxConnections,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &app{cfg: cfg, logger: log, pool: pool, metrics: metrics.New()}

	if cfg.Reset.UsesDefaultSecret() {
		log.Warn("SIMPLE_RESET_SECRET is not set, using the default reset secret")
	}

	var catalogCache service.CatalogCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			a.redis = client
			catalogCache = cache.NewCatalogCache(client, cfg.Redis.CatalogTTL)
		}
	}

	var notifier service.ResetNotifier
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		bot, err := telegram.NewBot(cfg.Telegram.Token)
		if err != nil {
			log.Warn("telegram unavailable, reset notifications disabled", zap.Error(err))
		} else {
			log.Info("telegram notifier enabled", zap.String("bot", bot.Self.UserName))
			notifier = telegram.NewNotifier(bot, cfg.Telegram.ChatID, log.Named("telegram"))
		}
	}

	tr := postgres.NewTransactor(pool)
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	boulderRepo := repository.NewBoulderRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	resetRepo := repository.NewResetRepository(pool)

	a.auth = service.NewAuthService(userRepo, sessionRepo, service.AuthConfig{
		SessionTTL:        cfg.Auth.SessionTTL,
		MaxUsers:          cfg.Auth.MaxUsers,
		ProfileAttempts:   cfg.Auth.ProfileAttempts,
		ProfileRetryDelay: cfg.Auth.ProfileRetryDelay,
	}, log.Named("auth"))
	a.catalog = service.NewCatalogService(boulderRepo, catalogCache, log.Named("catalog"))
	a.progress = service.NewProgressService(tr, progressRepo, a.catalog, log.Named("progress"))
	a.reset = service.NewResetService(
		tr,
		resetRepo,
		[]service.CredentialStrategy{
			service.NewSharedSecretStrategy(cfg.Reset.Secret),
			service.NewBearerTokenStrategy(a.auth),
		},
		notifier,
		log.Named("reset"),
	)

	return a, nil
}

func (a *app) location() *time.Location {
	loc, err := a.cfg.Reset.Location()
	if err != nil {
		a.logger.Warn("unknown reset timezone, using UTC", zap.String("timezone", a.cfg.Reset.Timezone))
		return time.UTC
	}
	return loc
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.pool.Close()
	_ = a.logger.Sync()
}
