package jobs

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"pricerelay/internal/adapters"
	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const perRequestTimeout = 5 * time.Second

// inversePrecision bounds the digits kept when turning units-per-USD into a
// USD price. Scaling later truncates to domain.RateDecimals.
const inversePrecision = 2 * domain.RateDecimals

// RateRelayer feeds a rate store with USD prices of the configured symbols.
type RateRelayer struct {
	client  adapters.QuoteClient
	relayer adapters.Relayer
	symbols []string
	clock   clockwork.Clock
	seq     atomic.Uint64
}

func NewRateRelayer(client adapters.QuoteClient, relayer adapters.Relayer, symbols []string, clock clockwork.Clock) *RateRelayer {
	r := &RateRelayer{client: client, relayer: relayer, symbols: symbols, clock: clock}
	// request ids keep growing across restarts
	r.seq.Store(uint64(clock.Now().Unix()))
	return r
}

// Run fetches quotes against USD and relays one rate per symbol. Symbols the
// provider did not quote are skipped until the next run.
func (r *RateRelayer) Run(ctx context.Context, execID string) error {
	reqCtx, cancel := context.WithTimeout(ctx, perRequestTimeout)
	quotes, err := r.client.GetQuotes(reqCtx, domain.USD)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to fetch quotes: %w", err)
	}

	resolveTime := uint64(r.clock.Now().Unix())
	if !quotes.UpdatedAt.IsZero() {
		resolveTime = uint64(quotes.UpdatedAt.Unix())
	}
	requestID := r.seq.Add(1)

	args := oracle.RelayArgs{}
	for _, symbol := range r.symbols {
		if symbol == domain.USD || slices.Contains(args.Symbols, symbol) {
			continue
		}
		perUSD, ok := quotes.Rates[symbol]
		if !ok || !perUSD.IsPositive() {
			logrus.WithFields(logrus.Fields{"symbol": symbol, "exec_id": execID}).Warn("No usable quote, symbol will be relayed next time")
			continue
		}
		rate, err := domain.ScaledRateFromDecimal(decimal.NewFromInt(1).DivRound(perUSD, inversePrecision))
		if err != nil {
			logrus.WithError(err).WithField("symbol", symbol).Warn("Skipping unrepresentable rate")
			continue
		}
		args.Symbols = append(args.Symbols, symbol)
		args.Rates = append(args.Rates, rate)
		args.ResolveTimes = append(args.ResolveTimes, resolveTime)
		args.RequestIDs = append(args.RequestIDs, requestID)
	}

	if len(args.Symbols) == 0 {
		logrus.Infof("Nothing to relay this time; execID: %s", execID)
		return nil
	}

	out, err := r.relayer.Relay(ctx, args)
	if err != nil {
		return fmt.Errorf("failed to relay %d rates: %w", len(args.Symbols), err)
	}
	logrus.WithFields(logrus.Fields{"tx_id": out.ID, "request_id": requestID}).
		Infof("%d rates were relayed; execID %s", len(args.Symbols), execID)
	return nil
}
