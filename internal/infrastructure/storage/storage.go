// Package storage selects the durable key/value backend from configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/infrastructure/config"
	mongodb "github.com/carrental/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/carrental/storefront/internal/infrastructure/db/redis"
	"github.com/carrental/storefront/internal/infrastructure/db/sqlite"
	"github.com/carrental/storefront/internal/infrastructure/storage/file"
	"github.com/carrental/storefront/internal/infrastructure/storage/memory"
)

// Open connects the configured driver.
func Open(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (ports.Storage, error) {
	log = log.With().Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case "memory":
		log.Warn().Msg("using in-memory storage, sessions will not survive a restart")
		return memory.New(), nil

	case "file":
		s, err := file.Open(file.Config{Path: cfg.FilePath, Secret: cfg.Secret})
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.FilePath).Bool("sealed", cfg.Secret != "").Msg("file storage ready")
		return s, nil

	case "redis":
		s, err := redisdb.Open(ctx, redisdb.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Redis.Namespace,
			TTL:       cfg.Redis.TTL,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Str("namespace", cfg.Redis.Namespace).Dur("ttl", cfg.Redis.TTL).Msg("redis storage ready")
		return s, nil

	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo storage ready")
		return mongodb.NewStorage(client, db, cfg.Mongo.Namespace), nil

	case "sqlite":
		s, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLite.Path).Msg("sqlite storage ready")
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
