package commands

import (
	"fmt"

	"github.com/nestodo/nestodo/internal/config"
	"github.com/nestodo/nestodo/internal/storage"
	"github.com/nestodo/nestodo/internal/storage/postgres"
	"github.com/nestodo/nestodo/internal/storage/redisdoc"
)

// openConfiguredStore connects the backend named in the environment,
// the same way the server does at startup.
func openConfiguredStore() (storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		store, err := redisdoc.New(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redisdoc: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
