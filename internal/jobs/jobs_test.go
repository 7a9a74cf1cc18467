package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pricerelay/internal/adapters/httpclient"
	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQuoteClient struct{ mock.Mock }

func (m *MockQuoteClient) GetQuotes(ctx context.Context, base string) (httpclient.Quotes, error) {
	args := m.Called(ctx, base)
	quotes, _ := args.Get(0).(httpclient.Quotes)
	return quotes, args.Error(1)
}

type MockRelayer struct{ mock.Mock }

func (m *MockRelayer) Relay(ctx context.Context, a oracle.RelayArgs) (host.Outcome, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(host.Outcome), args.Error(1)
}

type MockPriceRefresher struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockPriceRefresher) SaveMulti(ctx context.Context, bases, quotes []string) (host.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, bases, quotes)
	return args.Get(0).(host.Outcome), args.Error(1)
}

var now = time.Unix(1700000000, 0)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- RateRelayer ---

func TestRateRelayer_RelaysInvertedQuotes(t *testing.T) {
	client := new(MockQuoteClient)
	relayer := new(MockRelayer)

	client.On("GetQuotes", mock.Anything, "USD").Return(httpclient.Quotes{
		Base:      "USD",
		UpdatedAt: now.Add(-10 * time.Second),
		Rates: map[string]decimal.Decimal{
			"BTC": dec("0.00002"),
			"EUR": dec("0.8"),
			"XRP": dec("0"),
		},
	}, nil).Once()

	want := oracle.RelayArgs{
		Symbols:      []string{"BTC", "EUR"},
		Rates:        []domain.ScaledRate{domain.NewScaledRate(50_000_000_000_000), domain.NewScaledRate(1_250_000_000)},
		ResolveTimes: []uint64{1699999990, 1699999990},
		RequestIDs:   []uint64{1700000001, 1700000001},
	}
	relayer.On("Relay", mock.Anything, want).Return(host.Outcome{ID: uuid.New(), Status: host.StatusSucceeded}, nil).Once()

	job := NewRateRelayer(client, relayer, []string{"BTC", "EUR", "USD", "DOGE", "XRP", "BTC"}, clockwork.NewFakeClockAt(now))
	require.NoError(t, job.Run(context.Background(), "exec-1"))

	client.AssertExpectations(t)
	relayer.AssertExpectations(t)
}

func TestRateRelayer_RequestIDsGrowPerRun(t *testing.T) {
	client := new(MockQuoteClient)
	relayer := new(MockRelayer)
	client.On("GetQuotes", mock.Anything, "USD").Return(httpclient.Quotes{Rates: map[string]decimal.Decimal{"EUR": dec("0.5")}}, nil)

	var ids []uint64
	relayer.On("Relay", mock.Anything, mock.AnythingOfType("oracle.RelayArgs")).
		Run(func(args mock.Arguments) {
			a := args.Get(1).(oracle.RelayArgs)
			ids = append(ids, a.RequestIDs[0])
			// no provider timestamp falls back to the clock
			require.Equal(t, uint64(now.Unix()), a.ResolveTimes[0])
			require.Equal(t, "2000000000", a.Rates[0].String())
		}).
		Return(host.Outcome{}, nil)

	job := NewRateRelayer(client, relayer, []string{"EUR"}, clockwork.NewFakeClockAt(now))
	require.NoError(t, job.Run(context.Background(), "a"))
	require.NoError(t, job.Run(context.Background(), "b"))
	require.Equal(t, []uint64{1700000001, 1700000002}, ids)
}

func TestRateRelayer_ClientError(t *testing.T) {
	client := new(MockQuoteClient)
	relayer := new(MockRelayer)
	client.On("GetQuotes", mock.Anything, "USD").Return(nil, errors.New("timeout")).Once()

	job := NewRateRelayer(client, relayer, []string{"BTC"}, clockwork.NewFakeClockAt(now))
	err := job.Run(context.Background(), "exec")
	require.ErrorContains(t, err, "failed to fetch quotes")
	relayer.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestRateRelayer_NothingToRelay(t *testing.T) {
	client := new(MockQuoteClient)
	relayer := new(MockRelayer)
	client.On("GetQuotes", mock.Anything, "USD").Return(httpclient.Quotes{Rates: map[string]decimal.Decimal{}}, nil).Once()

	job := NewRateRelayer(client, relayer, []string{"BTC"}, clockwork.NewFakeClockAt(now))
	require.NoError(t, job.Run(context.Background(), "exec"))
	relayer.AssertNotCalled(t, "Relay", mock.Anything, mock.Anything)
}

func TestRateRelayer_RelayError(t *testing.T) {
	client := new(MockQuoteClient)
	relayer := new(MockRelayer)
	client.On("GetQuotes", mock.Anything, "USD").Return(httpclient.Quotes{Rates: map[string]decimal.Decimal{"EUR": dec("1")}}, nil).Once()
	relayer.On("Relay", mock.Anything, mock.Anything).Return(host.Outcome{}, domain.ErrNotAnOwner).Once()

	job := NewRateRelayer(client, relayer, []string{"EUR"}, clockwork.NewFakeClockAt(now))
	err := job.Run(context.Background(), "exec")
	require.ErrorIs(t, err, domain.ErrNotAnOwner)
}

// --- PriceRefresher ---

func TestNewPriceRefresher_ParsesAndBatches(t *testing.T) {
	pairs := []string{"btc/usd", " ETH/BTC ", "BTC/USD"}
	for i := 0; i < batchSize; i++ {
		pairs = append(pairs, "S"+string(rune('A'+i))+"/USD")
	}
	r, err := NewPriceRefresher(new(MockPriceRefresher), pairs)
	require.NoError(t, err)
	require.Len(t, r.batches, 2)
	require.Equal(t, []string{"BTC", "ETH"}, r.batches[0].bases[:2])
	require.Equal(t, []string{"USD", "BTC"}, r.batches[0].quotes[:2])
	require.Len(t, r.batches[1].bases, 2)

	_, err = NewPriceRefresher(new(MockPriceRefresher), []string{"BTCUSD"})
	require.ErrorContains(t, err, "invalid pair")
}

func TestPriceRefresher_RunsEveryBatch(t *testing.T) {
	cache := new(MockPriceRefresher)
	cache.On("SaveMulti", mock.Anything, []string{"BTC", "ETH"}, []string{"USD", "USD"}).Return(host.Outcome{ID: uuid.New()}, nil).Once()

	r, err := NewPriceRefresher(cache, []string{"BTC/USD", "ETH/USD"})
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background(), "exec"))
	cache.AssertExpectations(t)
}

func TestPriceRefresher_JoinsErrors(t *testing.T) {
	cache := new(MockPriceRefresher)
	cache.On("SaveMulti", mock.Anything, mock.Anything, mock.Anything).Return(host.Outcome{}, host.ErrRuntimeStopped)

	r, err := NewPriceRefresher(cache, []string{"BTC/USD"})
	require.NoError(t, err)
	err = r.Run(context.Background(), "exec")
	require.ErrorIs(t, err, host.ErrRuntimeStopped)
}

func TestPriceRefresher_Empty(t *testing.T) {
	cache := new(MockPriceRefresher)
	r, err := NewPriceRefresher(cache, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background(), "exec"))
	cache.AssertNotCalled(t, "SaveMulti", mock.Anything, mock.Anything, mock.Anything)
}

// --- Scheduler ---

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Shutdown())
}

func TestScheduler_RunsJobsUntilContextCancel(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(Job{
		Name:     "count",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context, execID string) error {
			require.NotEmpty(t, execID)
			runs.Add(1)
			return nil
		},
	})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	// no further runs once the shutdown triggered by ctx has settled
	var settled int32
	require.Eventually(t, func() bool {
		n := runs.Load()
		time.Sleep(60 * time.Millisecond)
		settled = runs.Load()
		return settled == n
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, settled, runs.Load(), "expected scheduler to be shutdown after ctx cancel")
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	s := NewScheduler(Job{Name: "noop", Run: func(context.Context, string) error { return errors.New("ignored") }})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
}
