package host

import "context"

// Write is one key assignment produced by a successful receipt.
type Write struct {
	Key   string
	Value []byte
}

// Store persists contract state. Each contract account owns one namespace.
// Apply must make every write of a batch visible together or none of them.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Apply(ctx context.Context, namespace string, writes []Write) error
}
