package leveldb

import (
	"context"
	"errors"
	"fmt"

	"pricerelay/internal/host"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// ContractStore keeps contract state in a LevelDB database. Keys are the
// namespace and the state key joined by a zero byte.
type ContractStore struct {
	db *leveldb.DB
}

func Open(path string) (*ContractStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at '%s': %w", path, err)
	}
	return &ContractStore{db: db}, nil
}

// OpenInMemory backs the store with volatile storage.
func OpenInMemory() (*ContractStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return &ContractStore{db: db}, nil
}

func (s *ContractStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, err := s.db.Get(toKey(namespace, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read '%s' of %s: %w", key, namespace, err)
	}
	return v, true, nil
}

func (s *ContractStore) Apply(ctx context.Context, namespace string, writes []host.Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for _, w := range writes {
		batch.Put(toKey(namespace, w.Key), w.Value)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write %d keys of %s: %w", len(writes), namespace, err)
	}
	return nil
}

func (s *ContractStore) Close() error { return s.db.Close() }

func toKey(namespace, key string) []byte {
	out := make([]byte, 0, len(namespace)+1+len(key))
	out = append(out, namespace...)
	out = append(out, 0)
	return append(out, key...)
}
