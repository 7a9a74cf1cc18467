package domain

import "strings"

// Record is the latest relayed value for one symbol, priced in USD.
type Record struct {
	Rate        ScaledRate `json:"rate"`
	ResolveTime uint64     `json:"resolve_time"`
	RequestID   uint64     `json:"request_id"`
}

// USDRecord is what every lookup of USD resolves to at block time ts.
func USDRecord(ts uint64) Record {
	return Record{Rate: NewScaledRate(RateScale), ResolveTime: ts}
}

// ReferenceData is a derived base/quote rate together with the freshness of
// both inputs.
type ReferenceData struct {
	Rate             ScaledRate `json:"rate"`
	LastUpdatedBase  uint64     `json:"last_updated_base"`
	LastUpdatedQuote uint64     `json:"last_updated_quote"`
}

// Lookup is one entry of a per-pair query. Data is nil when a side is missing
// and Missing names the absent symbols.
type Lookup struct {
	Base    string         `json:"base"`
	Quote   string         `json:"quote"`
	Data    *ReferenceData `json:"data"`
	Missing []string       `json:"missing,omitempty"`
}

func (l Lookup) Found() bool { return l.Data != nil }

// PairSymbol is the storage key a derived pair is cached under.
func PairSymbol(base, quote string) string {
	return base + "/" + quote
}

// SplitPairSymbol reverses PairSymbol.
func SplitPairSymbol(symbol string) (base, quote string, ok bool) {
	base, quote, ok = strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" {
		return "", "", false
	}
	return base, quote, true
}
