package handlers

import (
	"net/http"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

// HealthCheck godoc
// @Summary Health check
// @Produce json
// @Success 200 {object} PublicResponse[string] "Server is up and running"
// @Failure 500 {object} api.ErrorResponse "Database unreachable"
// @Router /healthcheck [get]
func (h *Handler) HealthCheck(request *http.Request) (*Result, *types.Error) {
	err := h.services.DoHealthCheck(request.Context())
	if err != nil {
		return nil, types.NewInternalServiceError(err)
	}

	return NewResult("Server is up and running"), nil
}
