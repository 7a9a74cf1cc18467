package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"pricerelay/internal/domain"

	"github.com/sirupsen/logrus"
)

const maxPairsPerRequest = 64

type SavePricesRequest struct {
	Bases  []string `json:"bases" example:"BTC,ETH"`
	Quotes []string `json:"quotes" example:"USD,BTC"`
}

// SavePrices godoc
// @Summary Refresh cached prices
// @Description Submits save_price_multi as the keeper. Pairs correspond by position; one missing pair discards the batch.
// @Tags Prices
// @Accept json
// @Produce json
// @Param request body SavePricesRequest true "Pairs to refresh"
// @Success 202 {object} TxResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /prices/save [post]
func (h *Handler) SavePrices(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req SavePricesRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Bases) != len(req.Quotes) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s:%d!=%d", domain.ErrBasesQuotesSize, len(req.Bases), len(req.Quotes)))
		return
	}
	if len(req.Bases) == 0 || len(req.Bases) > maxPairsPerRequest {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("between 1 and %d pairs are required", maxPairsPerRequest))
		return
	}

	bases := make([]string, len(req.Bases))
	quotes := make([]string, len(req.Quotes))
	for i := range req.Bases {
		bases[i] = strings.ToUpper(strings.TrimSpace(req.Bases[i]))
		quotes[i] = strings.ToUpper(strings.TrimSpace(req.Quotes[i]))
		if err := h.validator.ValidatePair(bases[i], quotes[i]); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("pair %d: %s", i, err))
			return
		}
	}

	txID, err := h.prices.SubmitSaveMulti(r.Context(), bases, quotes)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "SavePrices", "pairs": len(bases)}).Error("price refresh wasn't submitted")
		writeError(w, http.StatusInternalServerError, "failed to submit price refresh")
		return
	}

	writeJSON(w, http.StatusAccepted, TxResponse{TxID: txID.String()})
}
