// Package pricecache keeps a local copy of derived pair prices. Prices are
// fetched from an oracle asynchronously and written by continuations, so an
// absent or failed answer never touches the cache.
package pricecache

import (
	"fmt"
	"strings"

	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/contract/ownable"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"
	"pricerelay/internal/platform/metrics"

	"github.com/sirupsen/logrus"
)

const (
	MethodGetOracle      = "get_oracle"
	MethodSetOracle      = "set_oracle"
	MethodGetPrice       = "get_price"
	MethodSavePrice      = "save_price"
	MethodSavePriceMulti = "save_price_multi"
	MethodSavePriceEach  = "save_price_each"
	MethodSetPrice       = "set_price"
	MethodSetPriceMulti  = "set_price_multi"
	MethodSetPriceEach   = "set_price_each"
)

type InitArgs struct {
	Oracle host.AccountID `json:"oracle"`
	// OwnerGatedOracle restricts set_oracle to the deployer.
	OwnerGatedOracle bool `json:"owner_gated_oracle,omitempty"`
}

type SetOracleArgs struct {
	NewOracle host.AccountID `json:"new_oracle"`
}

type SetPriceArgs struct {
	Symbol string `json:"symbol"`
}

type SetPricesArgs struct {
	Symbols []string `json:"symbols"`
}

type State struct {
	Oracle           host.AccountID `json:"oracle"`
	Owner            host.AccountID `json:"owner,omitempty"`
	OwnerGatedOracle bool           `json:"owner_gated_oracle,omitempty"`
}

type Contract struct {
	state  host.Value[State]
	prices host.Map[domain.ScaledRate]
}

func New() *Contract {
	return &Contract{
		state:  host.NewValue[State](host.StateKey),
		prices: host.NewMap[domain.ScaledRate]("prices"),
	}
}

func (c *Contract) Invoke(cc *host.CallContext, method string, args any) (any, error) {
	switch method {
	case host.InitMethod:
		a, err := host.DecodeArgs[InitArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.Init(cc, a)
	case MethodGetOracle:
		st, err := c.load(cc)
		return st.Oracle, err
	case MethodSetOracle:
		a, err := host.DecodeArgs[SetOracleArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.SetOracle(cc, a.NewOracle)
	case MethodGetPrice:
		a, err := host.DecodeArgs[oracle.SymbolArgs](args)
		if err != nil {
			return nil, err
		}
		price, ok, err := c.Price(cc, a.Symbol)
		if err != nil || !ok {
			return nil, err
		}
		return price, nil
	case MethodSavePrice:
		a, err := host.DecodeArgs[oracle.PairArgs](args)
		if err != nil {
			return nil, err
		}
		return c.SavePrice(cc, a.Base, a.Quote)
	case MethodSavePriceMulti:
		a, err := host.DecodeArgs[oracle.PairsArgs](args)
		if err != nil {
			return nil, err
		}
		return c.SavePriceMulti(cc, a.Bases, a.Quotes)
	case MethodSavePriceEach:
		a, err := host.DecodeArgs[oracle.PairsArgs](args)
		if err != nil {
			return nil, err
		}
		return c.SavePriceEach(cc, a.Bases, a.Quotes)
	case MethodSetPrice:
		a, err := host.DecodeArgs[SetPriceArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.SetPrice(cc, a.Symbol)
	case MethodSetPriceMulti:
		a, err := host.DecodeArgs[SetPricesArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.SetPriceMulti(cc, a.Symbols)
	case MethodSetPriceEach:
		a, err := host.DecodeArgs[SetPricesArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.SetPriceEach(cc, a.Symbols)
	}
	return nil, fmt.Errorf("%w: %s", host.ErrMethodNotFound, method)
}

func (c *Contract) Init(cc *host.CallContext, args InitArgs) error {
	if _, exists, err := c.state.Get(cc); err != nil {
		return err
	} else if exists {
		return domain.ErrAlreadyInitialized
	}
	if _, err := host.ParseAccountID(string(args.Oracle)); err != nil {
		return err
	}
	st := State{Oracle: args.Oracle}
	if args.OwnerGatedOracle {
		st.Owner = cc.Signer()
		st.OwnerGatedOracle = true
	}
	return c.state.Set(cc, st)
}

// SetOracle replaces the oracle address. It is open to any signer unless the
// contract was initialized with OwnerGatedOracle.
func (c *Contract) SetOracle(cc *host.CallContext, newOracle host.AccountID) error {
	st, err := c.load(cc)
	if err != nil {
		return err
	}
	if st.OwnerGatedOracle {
		if err = ownable.OnlyOwner(cc, st.Owner); err != nil {
			return err
		}
	}
	if _, err = host.ParseAccountID(string(newOracle)); err != nil {
		return err
	}
	cc.Log("set oracle address from %s to %s", st.Oracle, newOracle)
	st.Oracle = newOracle
	return c.state.Set(cc, st)
}

func (c *Contract) Price(cc *host.CallContext, symbol string) (domain.ScaledRate, bool, error) {
	if _, err := c.load(cc); err != nil {
		return domain.ScaledRate{}, false, err
	}
	return c.prices.Get(cc, symbol)
}

// SavePrice asks the oracle for base/quote and schedules SetPrice to store
// the answer. Each hop gets a quarter of the remaining gas. The returned id
// identifies the outstanding request.
func (c *Contract) SavePrice(cc *host.CallContext, base, quote string) (uint64, error) {
	st, err := c.load(cc)
	if err != nil {
		return 0, err
	}
	budget := cc.RemainingGas() / 4
	p, err := cc.Call(st.Oracle, oracle.MethodGetReferenceData, oracle.PairArgs{Base: base, Quote: quote}, budget)
	if err != nil {
		return 0, err
	}
	p.Then(MethodSetPrice, SetPriceArgs{Symbol: domain.PairSymbol(base, quote)}, budget)
	return p.ID(), nil
}

// SavePriceMulti is the all-or-nothing batch form of SavePrice: one missing
// pair leaves every entry of the batch untouched.
func (c *Contract) SavePriceMulti(cc *host.CallContext, bases, quotes []string) (uint64, error) {
	return c.dispatchBatch(cc, bases, quotes, oracle.MethodGetReferenceBulk, MethodSetPriceMulti)
}

// SavePriceEach is the partial batch form: every pair the oracle resolves is
// stored, missing ones are skipped.
func (c *Contract) SavePriceEach(cc *host.CallContext, bases, quotes []string) (uint64, error) {
	return c.dispatchBatch(cc, bases, quotes, oracle.MethodGetReferenceEach, MethodSetPriceEach)
}

func (c *Contract) dispatchBatch(cc *host.CallContext, bases, quotes []string, query, continuation string) (uint64, error) {
	if len(bases) != len(quotes) {
		return 0, fmt.Errorf("%w:%d!=%d", domain.ErrBasesQuotesSize, len(bases), len(quotes))
	}
	st, err := c.load(cc)
	if err != nil {
		return 0, err
	}
	symbols := make([]string, len(bases))
	for i := range bases {
		symbols[i] = domain.PairSymbol(bases[i], quotes[i])
	}
	budget := cc.RemainingGas() / 4
	p, err := cc.Call(st.Oracle, query, oracle.PairsArgs{Bases: bases, Quotes: quotes}, budget)
	if err != nil {
		return 0, err
	}
	p.Then(continuation, SetPricesArgs{Symbols: symbols}, budget)
	return p.ID(), nil
}

// SetPrice stores the rate delivered by the oracle, or records the absence.
func (c *Contract) SetPrice(cc *host.CallContext, symbol string) error {
	res, err := c.callback(cc)
	if err != nil {
		return err
	}
	data, ok := host.ResultAs[domain.ReferenceData](res)
	if !ok {
		c.absent(cc, res, "Got None from the oracle")
		return nil
	}
	if _, _, err = c.prices.Insert(cc, symbol, data.Rate); err != nil {
		return err
	}
	cc.Log("Save rate %s to state", data.Rate)
	metrics.RecordPriceUpdate("saved", 1)
	return nil
}

// SetPriceMulti stores values positionally against symbols. Extra entries on
// either side are ignored.
func (c *Contract) SetPriceMulti(cc *host.CallContext, symbols []string) error {
	res, err := c.callback(cc)
	if err != nil {
		return err
	}
	values, ok := host.ResultAs[[]domain.ReferenceData](res)
	if !ok {
		c.absent(cc, res, "Got None")
		return nil
	}
	if len(values) != len(symbols) {
		logrus.WithFields(logrus.Fields{
			"account": cc.CurrentAccount(),
			"values":  len(values),
			"symbols": len(symbols),
		}).Warn("oracle returned a different number of values, storing the common prefix")
		n := min(len(values), len(symbols))
		values, symbols = values[:n], symbols[:n]
	}
	for i, symbol := range symbols {
		if _, _, err = c.prices.Insert(cc, symbol, values[i].Rate); err != nil {
			return err
		}
	}
	cc.Log("Got values %s", formatValues(values))
	metrics.RecordPriceUpdate("saved", len(values))
	return nil
}

// SetPriceEach stores every resolved entry and logs the missing ones.
func (c *Contract) SetPriceEach(cc *host.CallContext, symbols []string) error {
	res, err := c.callback(cc)
	if err != nil {
		return err
	}
	lookups, ok := host.ResultAs[[]domain.Lookup](res)
	if !ok || len(lookups) != len(symbols) {
		c.absent(cc, res, "Got None")
		return nil
	}
	saved := 0
	for i, l := range lookups {
		if !l.Found() {
			cc.Log("Skip %s: no data for %s", symbols[i], strings.Join(l.Missing, " and "))
			metrics.RecordPriceUpdate("absent", 1)
			continue
		}
		if _, _, err = c.prices.Insert(cc, symbols[i], l.Data.Rate); err != nil {
			return err
		}
		cc.Log("Save rate %s for %s", l.Data.Rate, symbols[i])
		saved++
	}
	metrics.RecordPriceUpdate("saved", saved)
	return nil
}

// callback admits only continuations this contract scheduled for itself.
func (c *Contract) callback(cc *host.CallContext) (host.PromiseResult, error) {
	res, ok := cc.PromiseResult()
	if !ok || cc.Predecessor() != cc.CurrentAccount() {
		return host.PromiseResult{}, fmt.Errorf("%w: called by %s", domain.ErrContinuationOnly, cc.Predecessor())
	}
	if _, err := c.load(cc); err != nil {
		return host.PromiseResult{}, err
	}
	return res, nil
}

func (c *Contract) absent(cc *host.CallContext, res host.PromiseResult, msg string) {
	cc.Log("%s", msg)
	if res.Err != nil {
		logrus.WithError(res.Err).WithField("account", cc.CurrentAccount()).Debug("oracle call failed")
	}
	metrics.RecordPriceUpdate("absent", 1)
}

func formatValues(values []domain.ReferenceData) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("(%s, %d, %d)", v.Rate, v.LastUpdatedBase, v.LastUpdatedQuote)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (c *Contract) load(cc *host.CallContext) (State, error) {
	st, ok, err := c.state.Get(cc)
	if err != nil {
		return st, err
	}
	if !ok {
		return st, domain.ErrNotInitialized
	}
	return st, nil
}
