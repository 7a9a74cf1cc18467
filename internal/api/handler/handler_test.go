package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricerelay/internal/domain"
	"pricerelay/internal/host"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockValidator struct{ mock.Mock }

func (m *MockValidator) ValidateSymbol(symbol string) error {
	args := m.Called(symbol)
	return args.Error(0)
}

func (m *MockValidator) ValidatePair(base, quote string) error {
	args := m.Called(base, quote)
	return args.Error(0)
}

func (m *MockValidator) Symbols() []string {
	args := m.Called()
	symbols, _ := args.Get(0).([]string)
	return symbols
}

type MockContracts struct{ mock.Mock }

func (m *MockContracts) Submit(ctx context.Context, tx host.Transaction) (uuid.UUID, error) {
	args := m.Called(ctx, tx)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *MockContracts) Outcome(id uuid.UUID) (host.Outcome, error) {
	args := m.Called(id)
	out, _ := args.Get(0).(host.Outcome)
	return out, args.Error(1)
}

func (m *MockContracts) View(ctx context.Context, receiver host.AccountID, method string, a any) (any, error) {
	args := m.Called(ctx, receiver, method, a)
	return args.Get(0), args.Error(1)
}

type MockPrices struct{ mock.Mock }

func (m *MockPrices) Price(ctx context.Context, base, quote string) (domain.ScaledRate, bool, error) {
	args := m.Called(ctx, base, quote)
	rate, _ := args.Get(0).(domain.ScaledRate)
	return rate, args.Bool(1), args.Error(2)
}

func (m *MockPrices) SubmitSaveMulti(ctx context.Context, bases, quotes []string) (uuid.UUID, error) {
	args := m.Called(ctx, bases, quotes)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

type errorJSON struct {
	Error string `json:"error"`
}

type mocks struct {
	validator *MockValidator
	contracts *MockContracts
	prices    *MockPrices
}

func newHandler() (*Handler, mocks) {
	m := mocks{validator: new(MockValidator), contracts: new(MockContracts), prices: new(MockPrices)}
	return NewHandler(m.validator, m.contracts, m.prices), m
}

func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var ej errorJSON
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ej))
	return ej.Error
}

// --- CallContract ---

func TestHandler_CallContract_Submits(t *testing.T) {
	h, m := newHandler()
	txID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/contracts/ref.near/call/relay", strings.NewReader(`{"symbols":["BTC"]}`))
	req.Header.Set(signerHeader, " owner.near ")
	req.Header.Set(gasHeader, "50")
	req = withParams(req, "account", "ref.near", "method", "relay")
	rr := httptest.NewRecorder()

	m.contracts.On("Submit", mock.Anything, host.Transaction{
		Signer:   "owner.near",
		Receiver: "ref.near",
		Method:   "relay",
		Args:     json.RawMessage(`{"symbols":["BTC"]}`),
		Gas:      50 * host.TGas,
	}).Return(txID, nil).Once()

	h.CallContract(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var res TxResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, txID.String(), res.TxID)
	m.contracts.AssertExpectations(t)
}

func TestHandler_CallContract_BadRequests(t *testing.T) {
	cases := []struct {
		name    string
		account string
		signer  string
		gas     string
		body    string
		wantMsg string
	}{
		{name: "bad account", account: "Bad Account", signer: "owner.near", wantMsg: "invalid account id"},
		{name: "missing signer", account: "ref.near", wantMsg: "X-Signer header must be a valid account id"},
		{name: "gas not a number", account: "ref.near", signer: "owner.near", gas: "lots", wantMsg: "X-Gas must be between 1 and 300 TGas"},
		{name: "gas above max", account: "ref.near", signer: "owner.near", gas: "301", wantMsg: "X-Gas must be between 1 and 300 TGas"},
		{name: "invalid json", account: "ref.near", signer: "owner.near", body: "{", wantMsg: "arguments must be valid JSON"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, m := newHandler()
			req := httptest.NewRequest(http.MethodPost, "/contracts/x/call/relay", strings.NewReader(tc.body))
			if tc.signer != "" {
				req.Header.Set(signerHeader, tc.signer)
			}
			if tc.gas != "" {
				req.Header.Set(gasHeader, tc.gas)
			}
			req = withParams(req, "account", tc.account, "method", "relay")
			rr := httptest.NewRecorder()

			h.CallContract(rr, req)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tc.wantMsg, decodeError(t, rr))
			m.contracts.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_CallContract_SubmitErrors(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{err: host.ErrAccountNotFound, wantStatus: http.StatusNotFound},
		{err: host.ErrRuntimeStopped, wantStatus: http.StatusServiceUnavailable},
		{err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h, m := newHandler()
			req := httptest.NewRequest(http.MethodPost, "/contracts/ghost.near/call/get", nil)
			req.Header.Set(signerHeader, "alice.near")
			req = withParams(req, "account", "ghost.near", "method", "get")
			rr := httptest.NewRecorder()

			m.contracts.On("Submit", mock.Anything, mock.Anything).Return(uuid.Nil, tc.err).Once()
			h.CallContract(rr, req)
			require.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestHandler_CallContract_TooLarge(t *testing.T) {
	h, m := newHandler()
	body := `{"k":"` + strings.Repeat("a", maxArgsBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/contracts/ref.near/call/relay", strings.NewReader(body))
	req.Header.Set(signerHeader, "owner.near")
	req = withParams(req, "account", "ref.near", "method", "relay")
	rr := httptest.NewRecorder()

	h.CallContract(rr, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	m.contracts.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

// --- ViewContract ---

func TestHandler_ViewContract(t *testing.T) {
	h, m := newHandler()
	req := httptest.NewRequest(http.MethodPost, "/contracts/ref.near/view/get_refs", bytes.NewBufferString(`{"symbol":"BTC"}`))
	req = withParams(req, "account", "ref.near", "method", "get_refs")
	rr := httptest.NewRecorder()

	rec := domain.Record{Rate: domain.NewScaledRate(42), ResolveTime: 7, RequestID: 1}
	m.contracts.On("View", mock.Anything, host.AccountID("ref.near"), "get_refs", json.RawMessage(`{"symbol":"BTC"}`)).Return(rec, nil).Once()

	h.ViewContract(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"result":{"rate":"42","resolve_time":7,"request_id":1}}`, rr.Body.String())
	m.contracts.AssertExpectations(t)
}

func TestHandler_ViewContract_Errors(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{err: host.ErrMethodNotFound, wantStatus: http.StatusNotFound},
		{err: host.ErrViewPromise, wantStatus: http.StatusBadRequest},
		{err: domain.ErrDivisionByZero, wantStatus: http.StatusBadRequest},
		{err: errors.New("disk"), wantStatus: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h, m := newHandler()
			req := httptest.NewRequest(http.MethodPost, "/contracts/ref.near/view/x", nil)
			req = withParams(req, "account", "ref.near", "method", "x")
			rr := httptest.NewRecorder()

			m.contracts.On("View", mock.Anything, host.AccountID("ref.near"), "x", nil).Return(nil, tc.err).Once()
			h.ViewContract(rr, req)
			require.Equal(t, tc.wantStatus, rr.Code)
			m.contracts.AssertExpectations(t)
		})
	}
}

// --- GetTransaction ---

func TestHandler_GetTransaction(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name       string
		out        host.Outcome
		err        error
		wantStatus int
	}{
		{name: "pending", out: host.Outcome{ID: id, Status: host.StatusPending}, wantStatus: http.StatusAccepted},
		{name: "final", out: host.Outcome{ID: id, Status: host.StatusSucceeded}, wantStatus: http.StatusOK},
		{name: "failed is final", out: host.Outcome{ID: id, Status: host.StatusFailed, Error: "NOT_AN_OWNER"}, wantStatus: http.StatusOK},
		{name: "unknown", err: host.ErrTxNotFound, wantStatus: http.StatusNotFound},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, m := newHandler()
			req := withParams(httptest.NewRequest(http.MethodGet, "/transactions/"+id.String(), nil), "id", id.String())
			rr := httptest.NewRecorder()

			m.contracts.On("Outcome", id).Return(tc.out, tc.err).Once()
			h.GetTransaction(rr, req)

			require.Equal(t, tc.wantStatus, rr.Code)
			if tc.err == nil {
				var got host.Outcome
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				require.Equal(t, tc.out.Status, got.Status)
				require.Equal(t, id, got.ID)
			}
		})
	}
}

func TestHandler_GetTransaction_InvalidID(t *testing.T) {
	h, m := newHandler()
	req := withParams(httptest.NewRequest(http.MethodGet, "/transactions/nope", nil), "id", "nope")
	rr := httptest.NewRecorder()

	h.GetTransaction(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid transaction ID format", decodeError(t, rr))
	m.contracts.AssertNotCalled(t, "Outcome", mock.Anything)
}

// --- GetPrice ---

func priceRequest(base, quote string) *http.Request {
	return withParams(httptest.NewRequest(http.MethodGet, "/prices/x/y", nil), "base", base, "quote", quote)
}

func TestHandler_GetPrice_Success(t *testing.T) {
	h, m := newHandler()
	rr := httptest.NewRecorder()
	rate, err := domain.ParseScaledRate("1500000000000000000")
	require.NoError(t, err)

	m.validator.On("ValidatePair", "ETH", "USD").Return(nil).Once()
	m.prices.On("Price", mock.Anything, "ETH", "USD").Return(rate, true, nil).Once()

	h.GetPrice(rr, priceRequest(" eth", "usd "))

	require.Equal(t, http.StatusOK, rr.Code)
	var res GetPriceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, GetPriceResponse{Symbol: "ETH/USD", Rate: "1500000000000000000", Price: "1.5"}, res)
	m.validator.AssertExpectations(t)
	m.prices.AssertExpectations(t)
}

func TestHandler_GetPrice_Failures(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		h, m := newHandler()
		rr := httptest.NewRecorder()
		m.validator.On("ValidatePair", "BTC", "BTC").Return(ErrSameSymbols).Once()
		h.GetPrice(rr, priceRequest("btc", "btc"))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, ErrSameSymbols.Error(), decodeError(t, rr))
		m.prices.AssertNotCalled(t, "Price", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("not cached", func(t *testing.T) {
		h, m := newHandler()
		rr := httptest.NewRecorder()
		m.validator.On("ValidatePair", "BTC", "USD").Return(nil).Once()
		m.prices.On("Price", mock.Anything, "BTC", "USD").Return(domain.ScaledRate{}, false, nil).Once()
		h.GetPrice(rr, priceRequest("btc", "usd"))
		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "price not found", decodeError(t, rr))
	})
	t.Run("internal", func(t *testing.T) {
		h, m := newHandler()
		rr := httptest.NewRecorder()
		m.validator.On("ValidatePair", "BTC", "USD").Return(nil).Once()
		m.prices.On("Price", mock.Anything, "BTC", "USD").Return(domain.ScaledRate{}, false, errors.New("boom")).Once()
		h.GetPrice(rr, priceRequest("btc", "usd"))
		require.Equal(t, http.StatusInternalServerError, rr.Code)
		require.Equal(t, "ups, couldn't get price this time", decodeError(t, rr))
	})
}

// --- SavePrices ---

func TestHandler_SavePrices_Submits(t *testing.T) {
	h, m := newHandler()
	txID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/prices/save", strings.NewReader(`{"bases":["btc","eth"],"quotes":["usd","btc"]}`))
	rr := httptest.NewRecorder()

	m.validator.On("ValidatePair", "BTC", "USD").Return(nil).Once()
	m.validator.On("ValidatePair", "ETH", "BTC").Return(nil).Once()
	m.prices.On("SubmitSaveMulti", mock.Anything, []string{"BTC", "ETH"}, []string{"USD", "BTC"}).Return(txID, nil).Once()

	h.SavePrices(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var res TxResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	require.Equal(t, txID.String(), res.TxID)
	m.validator.AssertExpectations(t)
	m.prices.AssertExpectations(t)
}

func TestHandler_SavePrices_BadRequests(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "unknown field", body: `{"pairs":[]}`, wantMsg: "invalid request body"},
		{name: "length mismatch", body: `{"bases":["BTC","ETH"],"quotes":["USD"]}`, wantMsg: "BASES_QUOTES_SIZE_IS_NOT_EQUAL:2!=1"},
		{name: "empty", body: `{"bases":[],"quotes":[]}`, wantMsg: "between 1 and 64 pairs are required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, m := newHandler()
			rr := httptest.NewRecorder()
			h.SavePrices(rr, httptest.NewRequest(http.MethodPost, "/prices/save", strings.NewReader(tc.body)))
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tc.wantMsg, decodeError(t, rr))
			m.prices.AssertNotCalled(t, "SubmitSaveMulti", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("invalid pair", func(t *testing.T) {
		h, m := newHandler()
		rr := httptest.NewRecorder()
		m.validator.On("ValidatePair", "BTC", "USD").Return(nil).Once()
		m.validator.On("ValidatePair", "DOGE", "USD").Return(ErrSymbolUnsupported).Once()
		h.SavePrices(rr, httptest.NewRequest(http.MethodPost, "/prices/save", strings.NewReader(`{"bases":["BTC","DOGE"],"quotes":["USD","USD"]}`)))
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "pair 1: symbol not supported", decodeError(t, rr))
	})
}

// --- GetSymbols ---

func TestHandler_GetSymbols(t *testing.T) {
	h, m := newHandler()
	rr := httptest.NewRecorder()
	m.validator.On("Symbols").Return(nil).Once()

	h.GetSymbols(rr, httptest.NewRequest(http.MethodGet, "/prices/symbols", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"symbols":[]}`, rr.Body.String())
}
