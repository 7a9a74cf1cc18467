package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pricerelay/internal/host"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	maxArgsBytes = 64 << 10
	signerHeader = "X-Signer"
	gasHeader    = "X-Gas"
)

// CallContract godoc
// @Summary Submit a contract call
// @Description Submits a transaction signed by X-Signer. The outcome is available under /transactions/{id}.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param account path string true "Contract account"
// @Param method path string true "Method name"
// @Param X-Signer header string true "Signer account"
// @Param X-Gas header int false "Attached gas in TGas, at most 300"
// @Param args body object false "Method arguments"
// @Success 202 {object} TxResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /contracts/{account}/call/{method} [post]
func (h *Handler) CallContract(w http.ResponseWriter, r *http.Request) {
	account, method, ok := contractTarget(w, r)
	if !ok {
		return
	}

	signer, err := host.ParseAccountID(strings.TrimSpace(r.Header.Get(signerHeader)))
	if err != nil {
		writeError(w, http.StatusBadRequest, "X-Signer header must be a valid account id")
		return
	}

	var gas host.Gas
	if raw := strings.TrimSpace(r.Header.Get(gasHeader)); raw != "" {
		tgas, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil || tgas == 0 || host.Gas(tgas) > host.MaxPrepaidGas/host.TGas {
			writeError(w, http.StatusBadRequest, "X-Gas must be between 1 and 300 TGas")
			return
		}
		gas = host.Gas(tgas) * host.TGas
	}

	args, ok := readArgs(w, r)
	if !ok {
		return
	}

	txID, err := h.contracts.Submit(r.Context(), host.Transaction{
		Signer:   signer,
		Receiver: account,
		Method:   method,
		Args:     args,
		Gas:      gas,
	})
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "CallContract", "account": account, "method": method}).Error("transaction wasn't submitted")
			writeError(w, status, "failed to submit transaction")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, TxResponse{TxID: txID.String()})
}

func contractTarget(w http.ResponseWriter, r *http.Request) (host.AccountID, string, bool) {
	account, err := host.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return "", "", false
	}
	method := chi.URLParam(r, "method")
	if method == "" {
		writeError(w, http.StatusBadRequest, "method is required")
		return "", "", false
	}
	return account, method, true
}

// readArgs returns the body as raw JSON, or nil when it is empty.
func readArgs(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxArgsBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "arguments are too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, true
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "arguments must be valid JSON")
		return nil, false
	}
	return json.RawMessage(body), true
}
