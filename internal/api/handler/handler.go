package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pricerelay/internal/domain"
	"pricerelay/internal/host"

	"github.com/google/uuid"
)

type Validator interface {
	ValidateSymbol(symbol string) error
	ValidatePair(base, quote string) error
	Symbols() []string
}

// Contracts is the generic transaction and view surface of the runtime.
type Contracts interface {
	Submit(ctx context.Context, tx host.Transaction) (uuid.UUID, error)
	Outcome(id uuid.UUID) (host.Outcome, error)
	View(ctx context.Context, receiver host.AccountID, method string, args any) (any, error)
}

// Prices is the configured price cache.
type Prices interface {
	Price(ctx context.Context, base, quote string) (domain.ScaledRate, bool, error)
	SubmitSaveMulti(ctx context.Context, bases, quotes []string) (uuid.UUID, error)
}

type Handler struct {
	validator Validator
	contracts Contracts
	prices    Prices
}

func NewHandler(validator Validator, contracts Contracts, prices Prices) *Handler {
	return &Handler{validator: validator, contracts: contracts, prices: prices}
}

type errorResponse struct {
	Error string `json:"error"`
}

type TxResponse struct {
	TxID string `json:"tx_id" example:"77b5d9f5-0569-47e3-aee2-f659d59fbd97"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{Error: errorMsg})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// statusOf maps runtime and contract errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, host.ErrAccountNotFound),
		errors.Is(err, host.ErrMethodNotFound),
		errors.Is(err, host.ErrTxNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAnOwner),
		errors.Is(err, domain.ErrContinuationOnly):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyInitialized):
		return http.StatusConflict
	case errors.Is(err, host.ErrRuntimeStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, host.ErrInvalidArgs),
		errors.Is(err, host.ErrInvalidAccountID),
		errors.Is(err, host.ErrInvalidGas),
		errors.Is(err, host.ErrViewWrite),
		errors.Is(err, host.ErrViewPromise),
		errors.Is(err, domain.ErrNotInitialized),
		errors.Is(err, domain.ErrBadInputLength),
		errors.Is(err, domain.ErrBadRatesLength),
		errors.Is(err, domain.ErrBadResolveTimes),
		errors.Is(err, domain.ErrBadRequestIDs),
		errors.Is(err, domain.ErrBasesQuotesSize),
		errors.Is(err, domain.ErrDivisionByZero),
		errors.Is(err, domain.ErrRateOverflow),
		errors.Is(err, domain.ErrInvalidRate):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
