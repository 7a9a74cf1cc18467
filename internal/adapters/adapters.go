package adapters

import (
	"context"

	"pricerelay/internal/adapters/httpclient"
	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/host"
)

type QuoteClient interface {
	GetQuotes(ctx context.Context, base string) (httpclient.Quotes, error)
}

// ContractStore is a host.Store that owns resources.
type ContractStore interface {
	host.Store
	Close() error
}

type Relayer interface {
	Relay(ctx context.Context, args oracle.RelayArgs) (host.Outcome, error)
}

type PriceRefresher interface {
	SaveMulti(ctx context.Context, bases, quotes []string) (host.Outcome, error)
}
