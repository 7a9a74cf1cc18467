package handler

import (
	"errors"
	"net/http"

	"pricerelay/internal/host"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GetTransaction godoc
// @Summary Get transaction outcome
// @Description Returns 202 with the partial outcome while receipts are still running.
// @Tags Transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} host.Outcome
// @Success 202 {object} host.Outcome "transaction pending"
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /transactions/{id} [get]
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction ID format")
		return
	}

	out, err := h.contracts.Outcome(txID)
	if err != nil {
		if errors.Is(err, host.ErrTxNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		msg := "ups, couldn't get transaction this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetTransaction", "tx_id": txID}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}

	status := http.StatusOK
	if !out.Final() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, out)
}
