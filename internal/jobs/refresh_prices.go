package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pricerelay/internal/adapters"
	"pricerelay/internal/domain"
	"pricerelay/internal/platform/metrics"

	"github.com/sirupsen/logrus"
)

const (
	numWorkers = 4
	batchSize  = 16
)

type batch struct {
	bases  []string
	quotes []string
}

// PriceRefresher keeps the price cache warm for a fixed set of pairs. Pairs
// are split into batches so one missing pair only discards its own batch.
type PriceRefresher struct {
	cache   adapters.PriceRefresher
	batches []batch
}

// NewPriceRefresher parses "BASE/QUOTE" pair symbols.
func NewPriceRefresher(cache adapters.PriceRefresher, pairs []string) (*PriceRefresher, error) {
	seen := make(map[string]struct{}, len(pairs))
	var all batch
	for _, p := range pairs {
		base, quote, ok := domain.SplitPairSymbol(strings.ToUpper(strings.TrimSpace(p)))
		if !ok {
			return nil, fmt.Errorf("invalid pair '%s', expected BASE/QUOTE", p)
		}
		sym := domain.PairSymbol(base, quote)
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		all.bases = append(all.bases, base)
		all.quotes = append(all.quotes, quote)
	}

	r := &PriceRefresher{cache: cache}
	for start := 0; start < len(all.bases); start += batchSize {
		end := min(start+batchSize, len(all.bases))
		r.batches = append(r.batches, batch{bases: all.bases[start:end], quotes: all.quotes[start:end]})
	}
	return r, nil
}

func (r *PriceRefresher) Run(ctx context.Context, execID string) error {
	if len(r.batches) == 0 {
		logrus.Infof("Nothing to refresh this time; execID: %s", execID)
		return nil
	}

	work := make(chan batch, len(r.batches))
	for _, b := range r.batches {
		work <- b
	}
	close(work)

	errCh := make(chan error, len(r.batches))
	var wg sync.WaitGroup
	for i := 0; i < min(numWorkers, len(r.batches)); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for b := range work {
				if ctx.Err() != nil {
					errCh <- ctx.Err()
					return
				}
				errCh <- r.refresh(ctx, workerID, b)
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	logrus.Infof("%d batches were refreshed; execID %s", len(r.batches), execID)
	return nil
}

func (r *PriceRefresher) refresh(ctx context.Context, workerID int, b batch) error {
	out, err := r.cache.SaveMulti(ctx, b.bases, b.quotes)
	if err != nil {
		metrics.RecordPriceUpdate("error", len(b.bases))
		return fmt.Errorf("worker %d failed to refresh %d pairs: %w", workerID, len(b.bases), err)
	}
	logrus.WithFields(logrus.Fields{"tx_id": out.ID, "worker": workerID, "logs": out.Logs()}).Debug("Price batch refreshed")
	return nil
}
