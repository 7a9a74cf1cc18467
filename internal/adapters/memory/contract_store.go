package memory

import (
	"context"
	"slices"
	"sync"

	"pricerelay/internal/host"
)

// ContractStore keeps contract state in process memory. State is lost on
// restart.
type ContractStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewContractStore() *ContractStore {
	return &ContractStore{data: make(map[string]map[string][]byte)}
}

func (s *ContractStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (s *ContractStore) Apply(ctx context.Context, namespace string, writes []host.Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte, len(writes))
		s.data[namespace] = ns
	}
	for _, w := range writes {
		ns[w.Key] = slices.Clone(w.Value)
	}
	return nil
}

func (s *ContractStore) Close() error { return nil }
