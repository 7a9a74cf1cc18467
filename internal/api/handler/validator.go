package handler

import (
	"errors"
	"regexp"
	"slices"

	"pricerelay/internal/domain"
)

var (
	ErrSymbolRequired    = errors.New("symbol is required")
	ErrSymbolFormat      = errors.New("symbol must be 2-10 upper-case letters or digits")
	ErrSymbolUnsupported = errors.New("symbol not supported")
	ErrSameSymbols       = errors.New("base and quote must be different")
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// SymbolValidator accepts well-formed symbols. With a non-empty supported
// list only those symbols and USD pass.
type SymbolValidator struct {
	supported []string // sorted, read only
}

func (v *SymbolValidator) ValidateSymbol(symbol string) error {
	if symbol == "" {
		return ErrSymbolRequired
	}
	if !symbolPattern.MatchString(symbol) {
		return ErrSymbolFormat
	}
	if len(v.supported) > 0 {
		if _, ok := slices.BinarySearch(v.supported, symbol); !ok {
			return ErrSymbolUnsupported
		}
	}
	return nil
}

func (v *SymbolValidator) ValidatePair(base, quote string) error {
	if err := v.ValidateSymbol(base); err != nil {
		return err
	}
	if err := v.ValidateSymbol(quote); err != nil {
		return err
	}
	if base == quote {
		return ErrSameSymbols
	}
	return nil
}

func (v *SymbolValidator) Symbols() []string {
	return slices.Clone(v.supported)
}

func NewSymbolValidator(supported []string) *SymbolValidator {
	var list []string
	if len(supported) > 0 {
		list = append(slices.Clone(supported), domain.USD)
		slices.Sort(list)
		list = slices.Compact(list)
	}
	return &SymbolValidator{supported: list}
}
