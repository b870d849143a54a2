package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/Domenick1991/roombooking/internal/repository/memory"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage is the store and catalog selected by storage.driver.
type Storage struct {
	Store   repository.Store
	Catalog repository.RoomCatalog
	Users   repository.UserDirectory
	close   func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the configured driver and wraps the store with transient-error retries.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	var (
		storage *Storage
		err     error
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		storage, err = openMemory(cfg)
	default:
		storage, err = openPostgres(ctx, cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	storage.Store = repository.NewRetryingStore(storage.Store, repository.RetryConfig{
		MaxAttempts:   cfg.Retry.MaxAttempts,
		InitialDelay:  cfg.Retry.InitialDelay(),
		MaxDelay:      cfg.Retry.MaxDelay(),
		BackoffFactor: cfg.Retry.BackoffFactor,
	}, logger)
	logger.Info("storage ready", "driver", cfg.Storage.Driver)
	return storage, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.Database.MigrateOnStart {
		if err := repository.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &Storage{
		Store:   repository.NewPGStore(pool),
		Catalog: repository.NewRoomCatalog(pool),
		Users:   repository.NewUserDirectory(pool),
		close:   pool.Close,
	}, nil
}

func openMemory(cfg *config.Config) (*Storage, error) {
	catalog := memory.NewCatalog()
	if cfg.Storage.SeedFile != "" {
		f, err := os.Open(cfg.Storage.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()
		if err := catalog.LoadSeed(f); err != nil {
			return nil, err
		}
	}
	return &Storage{Store: memory.NewStore(), Catalog: catalog, Users: catalog}, nil
}
