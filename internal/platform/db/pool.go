package db

import (
	"context"
	"fmt"
	"time"

	"pricerelay/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxConns   int32 = 10
	healthCheckPeriod       = 30 * time.Second
	maxConnIdleTime         = 5 * time.Minute
)

// CreatePoolAndPing opens the contract state pool. Receipts commit one at a
// time, so the pool mostly serves concurrent views and outcome reads.
func CreatePoolAndPing(ctx context.Context, cfg config.DbServer) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.HealthCheckPeriod = healthCheckPeriod
	poolCfg.MaxConnIdleTime = maxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	logrus.WithFields(logrus.Fields{
		"host":      cfg.Host,
		"db":        cfg.Name,
		"max_conns": poolCfg.MaxConns,
	}).Debug("postgres pool ready")
	return pool, nil
}
