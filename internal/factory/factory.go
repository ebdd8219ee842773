package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ijo-project/ijo-backend/internal/config"
	"github.com/ijo-project/ijo-backend/internal/dependencies/clock"
	"github.com/ijo-project/ijo-backend/internal/dependencies/random"
	"github.com/ijo-project/ijo-backend/internal/services/auth"
	"github.com/ijo-project/ijo-backend/internal/services/companion"
	"github.com/ijo-project/ijo-backend/internal/services/content"
	"github.com/ijo-project/ijo-backend/internal/services/games"
	"github.com/ijo-project/ijo-backend/internal/services/scan"
	"github.com/ijo-project/ijo-backend/internal/services/users"
	"github.com/ijo-project/ijo-backend/internal/storage"
	"github.com/ijo-project/ijo-backend/internal/storage/memory"
	pgstorage "github.com/ijo-project/ijo-backend/internal/storage/postgres"
	redisstorage "github.com/ijo-project/ijo-backend/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	AuthService      *auth.Service
	UsersService     *users.Service
	ScanService      *scan.Service
	GamesService     *games.Service
	CompanionService *companion.Service
	ContentService   *content.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// Zero fields fall back to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Location decides where calendar days start for check-ins (optional)
	// If nil, the server's local time zone is used
	Location *time.Location
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// ConfigFrom translates the server configuration into a factory Config
func ConfigFrom(c *config.Config, logger *slog.Logger) (Config, error) {
	loc, err := c.Location()
	if err != nil {
		return Config{}, err
	}

	authCfg := auth.DefaultConfig()
	authCfg.Secret = c.Auth.JWTSecret
	authCfg.TokenTTL = c.Auth.TokenTTL

	cfg := Config{
		AuthConfig:  authCfg,
		Logger:      logger,
		Location:    loc,
		StorageType: c.Storage.Type,
	}

	switch c.Storage.Type {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.Redis.URL
		if c.Redis.PoolSize > 0 {
			redisCfg.PoolSize = c.Redis.PoolSize
		}
		cfg.RedisConfig = &redisCfg
	case StorageTypePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = c.Postgres.DSN
		cfg.PostgresConfig = &pgCfg
	}
	return cfg, nil
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Create external dependencies
	clk := clock.NewInLocation(cfg.Location)
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.AuthConfig, logger), nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		store, err := pgstorage.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis or postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		Logger:           logger,
		AuthService:      auth.New(store, clk, rnd, authCfg, logger),
		UsersService:     users.New(store, clk, logger),
		ScanService:      scan.New(store, clk, logger),
		GamesService:     games.New(store, clk, logger),
		CompanionService: companion.New(store, clk, rnd, logger),
		ContentService:   content.New(store, clk, logger),
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
