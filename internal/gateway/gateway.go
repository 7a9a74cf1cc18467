// Package gateway submits typed transactions and views to the contract
// runtime on behalf of the service's own accounts.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/contract/pricecache"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"

	"github.com/google/uuid"
)

// Runtime is the part of host.Runtime the gateway needs.
type Runtime interface {
	Submit(ctx context.Context, tx host.Transaction) (uuid.UUID, error)
	Wait(ctx context.Context, id uuid.UUID) (host.Outcome, error)
	View(ctx context.Context, receiver host.AccountID, method string, args any) (any, error)
}

// ErrTxFailed wraps the error of a transaction whose own call failed.
var ErrTxFailed = errors.New("transaction failed")

// RefStore relays rates into a rate store as its owner.
type RefStore struct {
	rt      Runtime
	account host.AccountID
	owner   host.AccountID
}

func NewRefStore(rt Runtime, account, owner host.AccountID) *RefStore {
	return &RefStore{rt: rt, account: account, owner: owner}
}

// Relay submits one relay transaction and waits for it to finish.
func (r *RefStore) Relay(ctx context.Context, args oracle.RelayArgs) (host.Outcome, error) {
	if err := args.Validate(); err != nil {
		return host.Outcome{}, err
	}
	return execute(ctx, r.rt, host.Transaction{
		Signer:   r.owner,
		Receiver: r.account,
		Method:   oracle.MethodRelay,
		Args:     args,
	})
}

func (r *RefStore) Record(ctx context.Context, symbol string) (domain.Record, bool, error) {
	v, err := r.rt.View(ctx, r.account, oracle.MethodGetRefs, oracle.SymbolArgs{Symbol: symbol})
	if err != nil {
		return domain.Record{}, false, err
	}
	return as[domain.Record](v)
}

// PriceCache drives a price cache as the keeper account.
type PriceCache struct {
	rt      Runtime
	account host.AccountID
	keeper  host.AccountID
}

func NewPriceCache(rt Runtime, account, keeper host.AccountID) *PriceCache {
	return &PriceCache{rt: rt, account: account, keeper: keeper}
}

// SubmitSaveMulti starts a bulk refresh and returns without waiting for the
// oracle round trip.
func (p *PriceCache) SubmitSaveMulti(ctx context.Context, bases, quotes []string) (uuid.UUID, error) {
	return p.rt.Submit(ctx, host.Transaction{
		Signer:   p.keeper,
		Receiver: p.account,
		Method:   pricecache.MethodSavePriceMulti,
		Args:     oracle.PairsArgs{Bases: bases, Quotes: quotes},
	})
}

// SaveMulti refreshes the given pairs and waits until the continuation ran.
func (p *PriceCache) SaveMulti(ctx context.Context, bases, quotes []string) (host.Outcome, error) {
	return execute(ctx, p.rt, host.Transaction{
		Signer:   p.keeper,
		Receiver: p.account,
		Method:   pricecache.MethodSavePriceMulti,
		Args:     oracle.PairsArgs{Bases: bases, Quotes: quotes},
	})
}

// Price reads the cached rate of base/quote at domain.CrossScale.
func (p *PriceCache) Price(ctx context.Context, base, quote string) (domain.ScaledRate, bool, error) {
	v, err := p.rt.View(ctx, p.account, pricecache.MethodGetPrice, oracle.SymbolArgs{Symbol: domain.PairSymbol(base, quote)})
	if err != nil {
		return domain.ScaledRate{}, false, err
	}
	return as[domain.ScaledRate](v)
}

func execute(ctx context.Context, rt Runtime, tx host.Transaction) (host.Outcome, error) {
	id, err := rt.Submit(ctx, tx)
	if err != nil {
		return host.Outcome{}, fmt.Errorf("submit %s on %s: %w", tx.Method, tx.Receiver, err)
	}
	out, err := rt.Wait(ctx, id)
	if err != nil {
		return host.Outcome{}, fmt.Errorf("wait for %s: %w", id, err)
	}
	if out.Status == host.StatusFailed {
		return out, fmt.Errorf("%w: %s on %s: %s", ErrTxFailed, tx.Method, tx.Receiver, out.Error)
	}
	return out, nil
}

// as accepts both a typed view result and its JSON-decoded form.
func as[T any](v any) (T, bool, error) {
	var zero T
	if v == nil {
		return zero, false, nil
	}
	out, err := host.DecodeArgs[T](v)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}
