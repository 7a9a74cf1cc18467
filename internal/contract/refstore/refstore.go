// Package refstore is the reference rate store: the owner relays USD rates
// per symbol and anyone can derive cross rates between two symbols.
package refstore

import (
	"fmt"

	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/contract/ownable"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"
)

type State struct {
	Owner host.AccountID `json:"owner"`
}

type Contract struct {
	state host.Value[State]
	refs  host.Map[domain.Record]
}

func New() *Contract {
	return &Contract{
		state: host.NewValue[State](host.StateKey),
		refs:  host.NewMap[domain.Record]("refs"),
	}
}

func (c *Contract) Invoke(cc *host.CallContext, method string, args any) (any, error) {
	switch method {
	case host.InitMethod:
		return nil, c.Init(cc)
	case oracle.MethodGetOwner:
		return c.Owner(cc)
	case oracle.MethodTransferOwnership:
		a, err := host.DecodeArgs[oracle.TransferOwnershipArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.TransferOwnership(cc, a.NewOwner)
	case oracle.MethodGetRefs:
		a, err := host.DecodeArgs[oracle.SymbolArgs](args)
		if err != nil {
			return nil, err
		}
		rec, ok, err := c.Refs(cc, a.Symbol)
		if err != nil || !ok {
			return nil, err
		}
		return rec, nil
	case oracle.MethodGetReferenceData:
		a, err := host.DecodeArgs[oracle.PairArgs](args)
		if err != nil {
			return nil, err
		}
		data, ok, err := c.ReferenceData(cc, a.Base, a.Quote)
		if err != nil || !ok {
			return nil, err
		}
		return data, nil
	case oracle.MethodGetReferenceBulk:
		a, err := host.DecodeArgs[oracle.PairsArgs](args)
		if err != nil {
			return nil, err
		}
		data, ok, err := c.ReferenceDataBulk(cc, a.Bases, a.Quotes)
		if err != nil || !ok {
			return nil, err
		}
		return data, nil
	case oracle.MethodGetReferenceEach:
		a, err := host.DecodeArgs[oracle.PairsArgs](args)
		if err != nil {
			return nil, err
		}
		return c.ReferenceDataEach(cc, a.Bases, a.Quotes)
	case oracle.MethodRelay:
		a, err := host.DecodeArgs[oracle.RelayArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.Relay(cc, a)
	}
	return nil, fmt.Errorf("%w: %s", host.ErrMethodNotFound, method)
}

// Init makes the signer the owner.
func (c *Contract) Init(cc *host.CallContext) error {
	if _, exists, err := c.state.Get(cc); err != nil {
		return err
	} else if exists {
		return domain.ErrAlreadyInitialized
	}
	return c.state.Set(cc, State{Owner: cc.Signer()})
}

func (c *Contract) Owner(cc *host.CallContext) (host.AccountID, error) {
	st, err := c.load(cc)
	return st.Owner, err
}

func (c *Contract) TransferOwnership(cc *host.CallContext, newOwner host.AccountID) error {
	st, err := c.load(cc)
	if err != nil {
		return err
	}
	if err = ownable.Transfer(cc, st.Owner, newOwner); err != nil {
		return err
	}
	st.Owner = newOwner
	return c.state.Set(cc, st)
}

// Refs returns the latest record for symbol. USD always resolves to one at
// the current block time.
func (c *Contract) Refs(cc *host.CallContext, symbol string) (domain.Record, bool, error) {
	if _, err := c.load(cc); err != nil {
		return domain.Record{}, false, err
	}
	return c.lookupRecord(cc, symbol)
}

// ReferenceData derives base/quote. A missing side is logged and reported as
// not found; a zero quote rate or an oversized result fails the call.
func (c *Contract) ReferenceData(cc *host.CallContext, base, quote string) (domain.ReferenceData, bool, error) {
	if _, err := c.load(cc); err != nil {
		return domain.ReferenceData{}, false, err
	}
	l, err := c.lookup(cc, base, quote)
	if err != nil || !l.Found() {
		return domain.ReferenceData{}, false, err
	}
	return *l.Data, true, nil
}

// ReferenceDataBulk evaluates pairs in order and collapses to not found as
// soon as one pair is missing; pairs after it are not evaluated.
func (c *Contract) ReferenceDataBulk(cc *host.CallContext, bases, quotes []string) ([]domain.ReferenceData, bool, error) {
	if err := (oracle.PairsArgs{Bases: bases, Quotes: quotes}).Validate(); err != nil {
		return nil, false, err
	}
	if _, err := c.load(cc); err != nil {
		return nil, false, err
	}
	out := make([]domain.ReferenceData, 0, len(bases))
	for i := range bases {
		l, err := c.lookup(cc, bases[i], quotes[i])
		if err != nil {
			return nil, false, err
		}
		if !l.Found() {
			return nil, false, nil
		}
		out = append(out, *l.Data)
	}
	return out, true, nil
}

// ReferenceDataEach evaluates every pair and reports absence per entry.
func (c *Contract) ReferenceDataEach(cc *host.CallContext, bases, quotes []string) ([]domain.Lookup, error) {
	if err := (oracle.PairsArgs{Bases: bases, Quotes: quotes}).Validate(); err != nil {
		return nil, err
	}
	if _, err := c.load(cc); err != nil {
		return nil, err
	}
	out := make([]domain.Lookup, 0, len(bases))
	for i := range bases {
		l, err := c.lookup(cc, bases[i], quotes[i])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Relay overwrites the record of every symbol in input order.
func (c *Contract) Relay(cc *host.CallContext, args oracle.RelayArgs) error {
	st, err := c.load(cc)
	if err != nil {
		return err
	}
	if err = ownable.OnlyOwner(cc, st.Owner); err != nil {
		return err
	}
	if err = args.Validate(); err != nil {
		return err
	}
	for i, symbol := range args.Symbols {
		rec := domain.Record{Rate: args.Rates[i], ResolveTime: args.ResolveTimes[i], RequestID: args.RequestIDs[i]}
		if _, _, err = c.refs.Insert(cc, symbol, rec); err != nil {
			return err
		}
		cc.Log("relay: %s,%s,%d,%d", symbol, rec.Rate, rec.ResolveTime, rec.RequestID)
	}
	return nil
}

func (c *Contract) lookupRecord(cc *host.CallContext, symbol string) (domain.Record, bool, error) {
	if symbol == domain.USD {
		return domain.USDRecord(cc.BlockTimestamp()), true, nil
	}
	return c.refs.Get(cc, symbol)
}

func (c *Contract) lookup(cc *host.CallContext, base, quote string) (domain.Lookup, error) {
	l := domain.Lookup{Base: base, Quote: quote}
	b, baseOK, err := c.lookupRecord(cc, base)
	if err != nil {
		return l, err
	}
	q, quoteOK, err := c.lookupRecord(cc, quote)
	if err != nil {
		return l, err
	}
	switch {
	case baseOK && quoteOK:
		rate, err := domain.CrossRate(b.Rate, q.Rate)
		if err != nil {
			return l, fmt.Errorf("%s/%s: %w", base, quote, err)
		}
		l.Data = &domain.ReferenceData{Rate: rate, LastUpdatedBase: b.ResolveTime, LastUpdatedQuote: q.ResolveTime}
		return l, nil
	case quoteOK:
		l.Missing = []string{base}
		cc.Log("REF_DATA_NOT_AVAILABLE_FOR: %s", base)
	case baseOK:
		l.Missing = []string{quote}
		cc.Log("REF_DATA_NOT_AVAILABLE_FOR: %s", quote)
	default:
		l.Missing = []string{base, quote}
		cc.Log("REF_DATA_NOT_AVAILABLE_FOR: %s and %s", base, quote)
	}
	return l, nil
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
