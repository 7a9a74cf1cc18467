package host

import (
	"encoding/json"
	"fmt"
)

// StateKey is where a contract keeps its singleton state.
const StateKey = "STATE"

// Value is a typed singleton slot in contract storage.
type Value[T any] struct {
	key string
}

func NewValue[T any](key string) Value[T] { return Value[T]{key: key} }

func (s Value[T]) Get(cc *CallContext) (T, bool, error) {
	return load[T](cc, s.key)
}

func (s Value[T]) Set(cc *CallContext, v T) error {
	return store(cc, s.key, v)
}

// Map is a typed keyed collection in contract storage.
type Map[V any] struct {
	prefix string
}

func NewMap[V any](prefix string) Map[V] { return Map[V]{prefix: prefix} }

func (m Map[V]) Get(cc *CallContext, key string) (V, bool, error) {
	return load[V](cc, m.prefix+":"+key)
}

// Insert stores v under key and returns the previous value, if any.
func (m Map[V]) Insert(cc *CallContext, key string, v V) (V, bool, error) {
	prev, existed, err := m.Get(cc, key)
	if err != nil {
		return prev, false, err
	}
	if err = store(cc, m.prefix+":"+key, v); err != nil {
		return prev, false, err
	}
	return prev, existed, nil
}

func load[T any](cc *CallContext, key string) (T, bool, error) {
	var v T
	raw, ok, err := cc.read(key)
	if err != nil || !ok {
		return v, false, err
	}
	if err = json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("decode %s/%s: %w", cc.current, key, err)
	}
	return v, true, nil
}

func store[T any](cc *CallContext, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", cc.current, key, err)
	}
	return cc.write(key, raw)
}
