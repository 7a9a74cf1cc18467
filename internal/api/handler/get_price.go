package handler

import (
	"net/http"
	"strings"

	"pricerelay/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type GetPriceResponse struct {
	Symbol string `json:"symbol" example:"BTC/USD"`
	// Rate is the cached integer at 1e18 scale.
	Rate  string `json:"rate" example:"50000000000000000000000"`
	Price string `json:"price" example:"50000"`
}

// GetPrice godoc
// @Summary Get cached pair price
// @Description Reads the price cache. Prices appear after a save_price round trip.
// @Tags Prices
// @Produce json
// @Param base path string true "Base symbol"
// @Param quote path string true "Quote symbol"
// @Success 200 {object} GetPriceResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /prices/{base}/{quote} [get]
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "base")))
	quote := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "quote")))

	if err := h.validator.ValidatePair(base, quote); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rate, ok, err := h.prices.Price(r.Context(), base, quote)
	if err != nil {
		msg := "ups, couldn't get price this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetPrice", "base": base, "quote": quote}).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrPriceNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, GetPriceResponse{
		Symbol: domain.PairSymbol(base, quote),
		Rate:   rate.String(),
		Price:  rate.Decimal(domain.CrossDecimals).String(),
	})
}
