package leveldb

import (
	"context"
	"testing"

	"pricerelay/internal/host"

	"github.com/stretchr/testify/require"
)

func TestContractStore_ApplyAndGet(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "ref.near", "STATE")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Apply(ctx, "ref.near", []host.Write{
		{Key: "STATE", Value: []byte(`{"owner":"owner.near"}`)},
		{Key: "refs:BTC", Value: []byte(`{"rate":"1"}`)},
	}))

	v, ok, err := s.Get(ctx, "ref.near", "refs:BTC")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"rate":"1"}`, string(v))

	_, ok, err = s.Get(ctx, "proxy.near", "refs:BTC")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContractStore_NamespaceBoundary(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	// "a" + "b:c" must not collide with "a:b" + "c"
	require.NoError(t, s.Apply(ctx, "a", []host.Write{{Key: "b:c", Value: []byte("1")}}))
	_, ok, err := s.Get(ctx, "a:b", "c")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestContractStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Apply(ctx, "cache.near", []host.Write{{Key: "prices:BTC/USD", Value: []byte(`"5"`)}}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	v, ok, err := s.Get(ctx, "cache.near", "prices:BTC/USD")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"5"`, string(v))
}

func TestContractStore_CanceledContext(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.Get(ctx, "ns", "k")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, s.Apply(ctx, "ns", []host.Write{{Key: "k"}}), context.Canceled)
}
