package domain

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// RateScale is the fixed-point factor of relayed USD rates.
const RateScale = 1_000_000_000

// CrossScale is the fixed-point factor of derived pair rates. CrossRate keeps
// both 1e9 factors of its inputs, so a pair rate of 1 is 1e18.
const CrossScale = RateScale * RateScale

// Decimal places of the two scales.
const (
	RateDecimals  = 9
	CrossDecimals = 18
)

// USD is the synthetic reference symbol. Its rate is always exactly one.
const USD = "USD"

var crossScale = uint256.NewInt(CrossScale)

// ScaledRate is a non-negative fixed-point amount. Relayed records use
// RateScale, derived reference data uses CrossScale. Values never exceed 128
// bits; wider intermediates stay inside CrossRate.
type ScaledRate struct {
	v uint256.Int
}

func NewScaledRate(v uint64) ScaledRate {
	var r ScaledRate
	r.v.SetUint64(v)
	return r
}

// ParseScaledRate reads a base-10 integer that is already scaled.
func ParseScaledRate(s string) (ScaledRate, error) {
	var r ScaledRate
	if s == "" {
		return ScaledRate{}, fmt.Errorf("%w: empty", ErrInvalidRate)
	}
	if err := r.v.SetFromDecimal(s); err != nil {
		return ScaledRate{}, fmt.Errorf("%w %q: %v", ErrInvalidRate, s, err)
	}
	if r.v.BitLen() > 128 {
		return ScaledRate{}, fmt.Errorf("%w %q: exceeds 128 bits", ErrInvalidRate, s)
	}
	return r, nil
}

// ScaledRateFromDecimal scales d by RateScale and drops the remaining fraction.
func ScaledRateFromDecimal(d decimal.Decimal) (ScaledRate, error) {
	if d.IsNegative() {
		return ScaledRate{}, fmt.Errorf("%w: negative value %s", ErrInvalidRate, d)
	}
	v, overflow := uint256.FromBig(d.Shift(9).Truncate(0).BigInt())
	if overflow || v.BitLen() > 128 {
		return ScaledRate{}, fmt.Errorf("%w: %s exceeds 128 bits", ErrInvalidRate, d)
	}
	return ScaledRate{v: *v}, nil
}

// CrossRate returns base*1e18/quote, which is base/quote at CrossScale when
// both inputs are at RateScale. The product is computed in 256 bits and the
// quotient truncated toward zero.
func CrossRate(base, quote ScaledRate) (ScaledRate, error) {
	if quote.IsZero() {
		return ScaledRate{}, ErrDivisionByZero
	}
	var out ScaledRate
	if _, overflow := out.v.MulDivOverflow(&base.v, crossScale, &quote.v); overflow || out.v.BitLen() > 128 {
		return ScaledRate{}, ErrRateOverflow
	}
	return out, nil
}

func (r ScaledRate) IsZero() bool { return r.v.IsZero() }

func (r ScaledRate) String() string { return r.v.Dec() }

// Decimal removes the given number of fixed-point places, e.g.
// Decimal(RateDecimals) of 1500000000 is 1.5.
func (r ScaledRate) Decimal(places int32) decimal.Decimal {
	return decimal.NewFromBigInt(r.v.ToBig(), -places)
}

// MarshalJSON writes the rate as a quoted integer so 128-bit values survive
// JSON number handling in clients.
func (r ScaledRate) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(r.v.Dec())), nil
}

func (r *ScaledRate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRate, err)
		}
		data = []byte(s)
	}
	parsed, err := ParseScaledRate(string(data))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r ScaledRate) MarshalText() ([]byte, error) { return []byte(r.v.Dec()), nil }

func (r *ScaledRate) UnmarshalText(text []byte) error {
	parsed, err := ParseScaledRate(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
