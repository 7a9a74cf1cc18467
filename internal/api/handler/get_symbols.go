package handler

import "net/http"

type GetSymbolsResponse struct {
	Symbols []string `json:"symbols" example:"BTC,ETH,USD"`
}

// GetSymbols godoc
// @Summary List supported symbols
// @Description An empty list means every well-formed symbol is accepted.
// @Tags Prices
// @Produce json
// @Success 200 {object} GetSymbolsResponse
// @Router /prices/symbols [get]
func (h *Handler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := h.validator.Symbols()
	if symbols == nil {
		symbols = []string{}
	}
	writeJSON(w, http.StatusOK, GetSymbolsResponse{Symbols: symbols})
}
