package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pricerelay/internal/adapters"
	"pricerelay/internal/adapters/leveldb"
	"pricerelay/internal/adapters/memory"
	"pricerelay/internal/adapters/postgres"
	"pricerelay/internal/config"
	"pricerelay/internal/platform/db"

	"github.com/sirupsen/logrus"
)

// openStore returns the contract state backend selected by cfg.Storage and a
// cleanup func releasing everything it opened.
func openStore(ctx context.Context, cfg *config.AppConfig) (adapters.ContractStore, func(), error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory":
		return memory.NewContractStore(), func() {}, nil
	case "leveldb":
		store, err := leveldb.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open leveldb at %s: %w", cfg.Storage.Path, err)
		}
		logrus.WithField("path", cfg.Storage.Path).Info("✅ LevelDB state opened")
		return store, func() {
			if closeErr := store.Close(); closeErr != nil {
				logrus.WithError(closeErr).Error("Error closing leveldb")
			}
		}, nil
	case "postgres":
		pool, err := db.CreatePoolAndPing(ctx, cfg.DbServer)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to db: %w", err)
		}
		logrus.Info("✅ Postgres connection successful")
		if err = db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logrus.Info("✅ Postgres migrations applied")
		return postgres.NewContractStore(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver '%s'", cfg.Storage.Driver)
}

// Migrate applies the postgres migrations for the configured database.
func Migrate(cfgPath string) error {
	appCfg, err := config.Init(cfgPath)
	if err != nil {
		return err
	}
	setupLogger(appCfg.Logging.Level)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pool, err := db.CreatePoolAndPing(ctx, appCfg.DbServer)
	if err != nil {
		return err
	}
	defer pool.Close()
	return db.Migrate(ctx, pool)
}
