package postgres

import (
	"context"
	"errors"
	"fmt"

	"pricerelay/internal/host"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContractStore struct {
	pool *pgxpool.Pool
}

func (s *ContractStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	const q = `select value from contract_state where namespace = $1 and key = $2`

	var value []byte
	err := s.pool.QueryRow(ctx, q, namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read '%s' of %s: %w", key, namespace, err)
	}
	return value, true, nil
}

// Apply upserts every write in one transaction.
func (s *ContractStore) Apply(ctx context.Context, namespace string, writes []host.Write) error {
	if len(writes) == 0 {
		return nil
	}

	const q = `
		insert into contract_state(namespace, key, value, updated_at)
		values ($1, $2, $3, now())
		on conflict (namespace, key) do update
		set value = excluded.value, updated_at = now();
	`

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, w := range writes {
		batch.Queue(q, namespace, w.Key, w.Value)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write %d keys of %s: %w", len(writes), namespace, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *ContractStore) Close() error { return nil }

func NewContractStore(pool *pgxpool.Pool) *ContractStore {
	return &ContractStore{pool: pool}
}
