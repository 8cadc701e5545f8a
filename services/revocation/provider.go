package revocation

import (
	"context"
	"fmt"

	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/services/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, logger *logging.Service) (Store, error) {
	if logger != nil {
		logger.Info("initializing revocation store",
			zap.String("store_type", cfg.Revocation.Store))
	}

	switch cfg.Revocation.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Revocation.RedisAddr,
			Password: cfg.Revocation.RedisPassword,
			DB:       cfg.Revocation.RedisDB,
		})

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})

		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unsupported revocation store type: %s (supported: memory, redis)", cfg.Revocation.Store)
	}
}

func ProvideRevocationService(store Store, logger *logging.Service) *Service {
	return NewService(store, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRevocationService),
)
