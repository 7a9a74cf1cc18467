package refstore_test

import (
	"context"
	"testing"
	"time"

	"pricerelay/internal/adapters/memory"
	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/contract/refstore"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

const (
	owner host.AccountID = "owner.near"
	ref   host.AccountID = "ref.near"
)

var blockTime = time.Unix(1700000000, 0)

func setup(t *testing.T) *host.Runtime {
	t.Helper()
	rt := host.NewRuntime(memory.NewContractStore(), clockwork.NewFakeClockAt(blockTime), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = rt.Run(ctx) }()
	t.Cleanup(cancel)

	id, err := rt.Deploy(ctx, owner, ref, refstore.New(), nil)
	require.NoError(t, err)
	out, err := rt.Wait(ctx, id)
	require.NoError(t, err)
	require.Equal(t, host.StatusSucceeded, out.Status)
	return rt
}

func call(t *testing.T, rt *host.Runtime, signer host.AccountID, method string, args any) host.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := rt.Execute(ctx, host.Transaction{Signer: signer, Receiver: ref, Method: method, Args: args})
	require.NoError(t, err)
	return out
}

func view(t *testing.T, rt *host.Runtime, method string, args any) any {
	t.Helper()
	v, err := rt.View(context.Background(), ref, method, args)
	require.NoError(t, err)
	return v
}

func rates(vals ...uint64) []domain.ScaledRate {
	out := make([]domain.ScaledRate, len(vals))
	for i, v := range vals {
		out[i] = domain.NewScaledRate(v)
	}
	return out
}

func pairRate(t *testing.T, s string) domain.ScaledRate {
	t.Helper()
	r, err := domain.ParseScaledRate(s)
	require.NoError(t, err)
	return r
}

func relay(t *testing.T, rt *host.Runtime) {
	t.Helper()
	out := call(t, rt, owner, oracle.MethodRelay, oracle.RelayArgs{
		Symbols:      []string{"BTC", "ETH"},
		Rates:        rates(50_000_000_000_000, 2_000_000_000_000),
		ResolveTimes: []uint64{100, 200},
		RequestIDs:   []uint64{1, 2},
	})
	require.Equal(t, host.StatusSucceeded, out.Status, out.Error)
	require.Equal(t, []string{"relay: BTC,50000000000000,100,1", "relay: ETH,2000000000000,200,2"}, out.Logs())
}

func TestInit_Twice(t *testing.T) {
	rt := setup(t)

	out := call(t, rt, "mallory.near", host.InitMethod, nil)
	require.Equal(t, host.StatusFailed, out.Status)
	require.ErrorIs(t, out.Err(), domain.ErrAlreadyInitialized)
	require.Equal(t, owner, view(t, rt, oracle.MethodGetOwner, nil))
}

func TestRelay_AndReferenceData(t *testing.T) {
	rt := setup(t)
	relay(t, rt)

	got := view(t, rt, oracle.MethodGetReferenceData, oracle.PairArgs{Base: "BTC", Quote: "ETH"})
	require.Equal(t, domain.ReferenceData{Rate: pairRate(t, "25000000000000000000"), LastUpdatedBase: 100, LastUpdatedQuote: 200}, got)

	got = view(t, rt, oracle.MethodGetReferenceData, oracle.PairArgs{Base: "ETH", Quote: "USD"})
	require.Equal(t, domain.ReferenceData{
		Rate:             pairRate(t, "2000000000000000000000"),
		LastUpdatedBase:  200,
		LastUpdatedQuote: uint64(blockTime.UnixNano()),
	}, got)
}

func TestRelay_Overwrites(t *testing.T) {
	rt := setup(t)
	relay(t, rt)

	out := call(t, rt, owner, oracle.MethodRelay, oracle.RelayArgs{
		Symbols: []string{"BTC"}, Rates: rates(1), ResolveTimes: []uint64{300}, RequestIDs: []uint64{3},
	})
	require.Equal(t, host.StatusSucceeded, out.Status)

	got := view(t, rt, oracle.MethodGetRefs, oracle.SymbolArgs{Symbol: "BTC"})
	require.Equal(t, domain.Record{Rate: domain.NewScaledRate(1), ResolveTime: 300, RequestID: 3}, got)
}

func TestRelay_Preconditions(t *testing.T) {
	cases := []struct {
		name   string
		signer host.AccountID
		args   oracle.RelayArgs
		want   error
	}{
		{
			name:   "not owner",
			signer: "mallory.near",
			args:   oracle.RelayArgs{Symbols: []string{"BTC"}, Rates: rates(1), ResolveTimes: []uint64{1}, RequestIDs: []uint64{1}},
			want:   domain.ErrNotAnOwner,
		},
		{
			name:   "rates length",
			signer: owner,
			args:   oracle.RelayArgs{Symbols: []string{"BTC", "ETH"}, Rates: rates(1), ResolveTimes: []uint64{1, 2}, RequestIDs: []uint64{1, 2}},
			want:   domain.ErrBadRatesLength,
		},
		{
			name:   "resolve times length",
			signer: owner,
			args:   oracle.RelayArgs{Symbols: []string{"BTC"}, Rates: rates(1), ResolveTimes: nil, RequestIDs: []uint64{1}},
			want:   domain.ErrBadResolveTimes,
		},
		{
			name:   "request ids length",
			signer: owner,
			args:   oracle.RelayArgs{Symbols: []string{"BTC"}, Rates: rates(1), ResolveTimes: []uint64{1}, RequestIDs: []uint64{1, 2}},
			want:   domain.ErrBadRequestIDs,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := setup(t)
			out := call(t, rt, tc.signer, oracle.MethodRelay, tc.args)
			require.Equal(t, host.StatusFailed, out.Status)
			require.ErrorIs(t, out.Err(), tc.want)
			require.Nil(t, view(t, rt, oracle.MethodGetRefs, oracle.SymbolArgs{Symbol: "BTC"}))
		})
	}
}

func TestReferenceData_MissingSides(t *testing.T) {
	rt := setup(t)
	relay(t, rt)

	cases := []struct {
		base, quote string
		log         string
	}{
		{base: "DOGE", quote: "USD", log: "REF_DATA_NOT_AVAILABLE_FOR: DOGE"},
		{base: "BTC", quote: "DOGE", log: "REF_DATA_NOT_AVAILABLE_FOR: DOGE"},
		{base: "DOGE", quote: "XRP", log: "REF_DATA_NOT_AVAILABLE_FOR: DOGE and XRP"},
	}
	for _, tc := range cases {
		t.Run(tc.base+"/"+tc.quote, func(t *testing.T) {
			out := call(t, rt, "anyone.near", oracle.MethodGetReferenceData, oracle.PairArgs{Base: tc.base, Quote: tc.quote})
			require.Equal(t, host.StatusSucceeded, out.Status)
			require.Nil(t, out.Result)
			require.Equal(t, []string{tc.log}, out.Logs())
		})
	}
}

func TestReferenceData_ZeroQuoteFails(t *testing.T) {
	rt := setup(t)
	out := call(t, rt, owner, oracle.MethodRelay, oracle.RelayArgs{
		Symbols: []string{"NIL"}, Rates: rates(0), ResolveTimes: []uint64{1}, RequestIDs: []uint64{1},
	})
	require.Equal(t, host.StatusSucceeded, out.Status)

	_, err := rt.View(context.Background(), ref, oracle.MethodGetReferenceData, oracle.PairArgs{Base: "USD", Quote: "NIL"})
	require.ErrorIs(t, err, domain.ErrDivisionByZero)
}

func TestReferenceDataBulk(t *testing.T) {
	rt := setup(t)
	relay(t, rt)

	got := view(t, rt, oracle.MethodGetReferenceBulk, oracle.PairsArgs{Bases: []string{"BTC", "ETH"}, Quotes: []string{"USD", "BTC"}})
	require.Equal(t, []domain.ReferenceData{
		{Rate: pairRate(t, "50000000000000000000000"), LastUpdatedBase: 100, LastUpdatedQuote: uint64(blockTime.UnixNano())},
		{Rate: domain.NewScaledRate(40_000_000_000_000_000), LastUpdatedBase: 200, LastUpdatedQuote: 100},
	}, got)

	// one missing pair collapses the whole batch
	got = view(t, rt, oracle.MethodGetReferenceBulk, oracle.PairsArgs{Bases: []string{"BTC", "DOGE"}, Quotes: []string{"USD", "USD"}})
	require.Nil(t, got)

	_, err := rt.View(context.Background(), ref, oracle.MethodGetReferenceBulk, oracle.PairsArgs{Bases: []string{"BTC"}, Quotes: nil})
	require.ErrorIs(t, err, domain.ErrBadInputLength)
}

func TestReferenceDataEach(t *testing.T) {
	rt := setup(t)
	relay(t, rt)

	got := view(t, rt, oracle.MethodGetReferenceEach, oracle.PairsArgs{Bases: []string{"BTC", "DOGE"}, Quotes: []string{"USD", "ETH"}})
	lookups, ok := got.([]domain.Lookup)
	require.True(t, ok)
	require.Len(t, lookups, 2)
	require.True(t, lookups[0].Found())
	require.Equal(t, pairRate(t, "50000000000000000000000"), lookups[0].Data.Rate)
	require.False(t, lookups[1].Found())
	require.Equal(t, []string{"DOGE"}, lookups[1].Missing)
}

func TestTransferOwnership(t *testing.T) {
	rt := setup(t)

	out := call(t, rt, "mallory.near", oracle.MethodTransferOwnership, oracle.TransferOwnershipArgs{NewOwner: "mallory.near"})
	require.ErrorIs(t, out.Err(), domain.ErrNotAnOwner)

	out = call(t, rt, owner, oracle.MethodTransferOwnership, oracle.TransferOwnershipArgs{NewOwner: "next.near"})
	require.Equal(t, host.StatusSucceeded, out.Status)
	require.Equal(t, []string{"transfer ownership from owner.near to next.near"}, out.Logs())
	require.Equal(t, host.AccountID("next.near"), view(t, rt, oracle.MethodGetOwner, nil))

	// the previous owner lost the gate immediately
	out = call(t, rt, owner, oracle.MethodRelay, oracle.RelayArgs{})
	require.ErrorIs(t, out.Err(), domain.ErrNotAnOwner)
	out = call(t, rt, "next.near", oracle.MethodRelay, oracle.RelayArgs{})
	require.Equal(t, host.StatusSucceeded, out.Status)
}

func TestUninitialized(t *testing.T) {
	rt := host.NewRuntime(memory.NewContractStore(), clockwork.NewFakeClock(), nil)
	require.NoError(t, rt.Register(ref, refstore.New()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = rt.Run(ctx) }()

	_, err := rt.View(ctx, ref, oracle.MethodGetOwner, nil)
	require.ErrorIs(t, err, domain.ErrNotInitialized)
}
