package db

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/config"
	"github.com/xtrntr/tradedesk/internal/store"
)

// Open connects the configured persistence backend. It returns the factory
// used by the store registry and a function that releases the backend.
func Open(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (store.PersisterFactory, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		database, err := NewDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close(ctx)
			return nil, nil, err
		}
		logger.Info("persisting preferences to postgres")
		return database.Persister, func() { database.Close(context.Background()) }, nil
	case config.BackendRedis:
		client, err := NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.WithField("addr", cfg.RedisAddr).Info("persisting preferences to redis")
		return client.Persister, func() { client.Close() }, nil
	case config.BackendMemory:
		logger.Warn("preferences are kept in memory only")
		return func(string) store.Persister { return store.NewMemoryPersister(nil) }, func() {}, nil
	default:
		logger.WithField("dir", cfg.DataDir).Info("persisting preferences to files")
		return func(name string) store.Persister { return store.NewFilePersister(cfg.DataDir, name) }, func() {}, nil
	}
}
