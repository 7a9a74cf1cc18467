package domain

import "errors"

// Contract precondition failures. The texts are the ones surfaced to callers in
// transaction outcomes, so they stay stable.
var (
	ErrAlreadyInitialized = errors.New("ALREADY_INITIALIZED")
	ErrNotInitialized     = errors.New("NOT_INITIALIZED")
	ErrNotAnOwner         = errors.New("NOT_AN_OWNER")
	ErrBadInputLength     = errors.New("BAD_INPUT_LENGTH")
	ErrBadRatesLength     = errors.New("BAD_RATES_LENGTH")
	ErrBadResolveTimes    = errors.New("BAD_RESOLVE_TIMES_LENGTH")
	ErrBadRequestIDs      = errors.New("BAD_REQUEST_IDS_LENGTH")
	ErrBasesQuotesSize    = errors.New("BASES_QUOTES_SIZE_IS_NOT_EQUAL")
	ErrContinuationOnly   = errors.New("method can only be invoked as a callback")
)

// Fixed-point arithmetic failures.
var (
	ErrDivisionByZero = errors.New("cross rate: quote rate is zero")
	ErrRateOverflow   = errors.New("cross rate: result exceeds 128 bits")
	ErrInvalidRate    = errors.New("invalid scaled rate")
)

var ErrPriceNotFound = errors.New("price not found")
