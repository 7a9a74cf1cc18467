package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type ViewResponse struct {
	Result any `json:"result"`
}

// ViewContract godoc
// @Summary Call a read-only method
// @Tags Contracts
// @Accept json
// @Produce json
// @Param account path string true "Contract account"
// @Param method path string true "Method name"
// @Param args body object false "Method arguments"
// @Success 200 {object} ViewResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /contracts/{account}/view/{method} [post]
func (h *Handler) ViewContract(w http.ResponseWriter, r *http.Request) {
	account, method, ok := contractTarget(w, r)
	if !ok {
		return
	}
	args, ok := readArgs(w, r)
	if !ok {
		return
	}

	var callArgs any
	if args != nil {
		callArgs = args
	}
	result, err := h.contracts.View(r.Context(), account, method, callArgs)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			logrus.WithError(err).WithFields(logrus.Fields{"handler": "ViewContract", "account": account, "method": method}).Error("view failed")
			writeError(w, status, "ups, couldn't run the view this time")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ViewResponse{Result: result})
}
