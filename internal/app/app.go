// Package app wires configuration into the store, platform client and
// services shared by the server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"groupkeeper-backend/internal/config"
	"groupkeeper-backend/internal/logger"
	"groupkeeper-backend/internal/metrics"
	"groupkeeper-backend/internal/platform"
	"groupkeeper-backend/internal/repository"
	"groupkeeper-backend/internal/repository/filestore"
	"groupkeeper-backend/internal/repository/postgres"
	redisstore "groupkeeper-backend/internal/repository/redis"
	"groupkeeper-backend/internal/repository/sqlite"
	"groupkeeper-backend/internal/security"
	"groupkeeper-backend/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

type App struct {
	Config   *config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Store    repository.InviteCodeRepository
	Platform *platform.Client
	Tokens   security.TokenManager

	Keys       service.KeyService
	Redemption service.RedemptionService
	Membership service.MembershipService
	Session    service.SessionService
}

// New builds every dependency from cfg. The caller owns the result and must
// Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := NewPlatformClient(cfg, m)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Registry:   registry,
		Metrics:    m,
		Store:      store,
		Platform:   client,
		Tokens:     security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL()),
		Keys:       service.NewKeyService(store, service.KeyOptions{Length: cfg.Keys.Length, MaxBatch: cfg.Keys.MaxBatch}, m),
		Redemption: service.NewRedemptionService(store, client, m),
		Membership: service.NewMembershipService(client, m),
		Session:    service.NewSessionService(client, m),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// OpenStore opens the invite code backing named by cfg.Store.Type.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.InviteCodeRepository, error) {
	switch cfg.Store.Type {
	case config.StoreFile:
		logger.Info("Using file store", "path", cfg.Store.Path)
		return filestore.Open(cfg.Store.Path)
	case config.StoreSQLite:
		logger.Info("Using SQLite store", "path", cfg.Store.Path)
		return sqlite.Open(cfg.Store.Path)
	case config.StorePostgres:
		logger.Info("Using PostgreSQL store", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		return postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis store", "key_prefix", cfg.Store.KeyPrefix)
		return redisstore.NewStore(client, cfg.Store.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %q", cfg.Store.Type)
	}
}

// NewPlatformClient builds a rate-limited platform client.
func NewPlatformClient(cfg *config.Config, m *metrics.Metrics) (*platform.Client, error) {
	return platform.NewClient(platform.Config{
		GroupID:       cfg.Platform.GroupID,
		SessionCookie: cfg.Platform.SessionCookie,
		UsersBaseURL:  cfg.Platform.UsersBaseURL,
		GroupsBaseURL: cfg.Platform.GroupsBaseURL,
		HTTPClient:    &http.Client{Timeout: cfg.PlatformTimeout()},
		Limiter:       rate.NewLimiter(rate.Limit(cfg.Platform.RequestsPerSecond), cfg.Platform.Burst),
		Metrics:       m,
	})
}
