// Package oracle describes the reference data interface shared by the rate
// store, the proxy in front of it and the price cache consuming it.
package oracle

import (
	"fmt"

	"pricerelay/internal/domain"
	"pricerelay/internal/host"
)

const (
	MethodGetOwner          = "get_owner"
	MethodTransferOwnership = "transfer_ownership"
	MethodGetRefs           = "get_refs"
	MethodGetReferenceData  = "get_reference_data"
	MethodGetReferenceBulk  = "get_reference_data_bulk"
	MethodGetReferenceEach  = "get_reference_data_each"
	MethodRelay             = "relay"
)

type TransferOwnershipArgs struct {
	NewOwner host.AccountID `json:"new_owner"`
}

type SymbolArgs struct {
	Symbol string `json:"symbol"`
}

type PairArgs struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type PairsArgs struct {
	Bases  []string `json:"bases"`
	Quotes []string `json:"quotes"`
}

// Validate fails with domain.ErrBadInputLength when the vectors differ in
// length.
func (a PairsArgs) Validate() error {
	if len(a.Bases) != len(a.Quotes) {
		return fmt.Errorf("%w: %d != %d", domain.ErrBadInputLength, len(a.Bases), len(a.Quotes))
	}
	return nil
}

// RelayArgs carries aligned vectors: entry i of every slice describes
// Symbols[i].
type RelayArgs struct {
	Symbols      []string            `json:"symbols"`
	Rates        []domain.ScaledRate `json:"rates"`
	ResolveTimes []uint64            `json:"resolve_times"`
	RequestIDs   []uint64            `json:"request_ids"`
}

func (a RelayArgs) Validate() error {
	n := len(a.Symbols)
	switch {
	case len(a.Rates) != n:
		return fmt.Errorf("%w: %d != %d", domain.ErrBadRatesLength, len(a.Rates), n)
	case len(a.ResolveTimes) != n:
		return fmt.Errorf("%w: %d != %d", domain.ErrBadResolveTimes, len(a.ResolveTimes), n)
	case len(a.RequestIDs) != n:
		return fmt.Errorf("%w: %d != %d", domain.ErrBadRequestIDs, len(a.RequestIDs), n)
	}
	return nil
}
