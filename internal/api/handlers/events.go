package handlers

import (
	"net/http"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

// GetEvents godoc
// @Summary List ledger events
// @Description Note, redemption and reserve events, newest first.
// @Produce json
// @Param pagination_key query string false "Pagination key to fetch the next page of events"
// @Success 200 {object} PublicResponse[[]services.EventPublic]{array} "Events and pagination token"
// @Failure 400 {object} api.ErrorResponse "Invalid pagination key"
// @Router /v1/events [get]
func (h *Handler) GetEvents(request *http.Request) (*Result, *types.Error) {
	events, nextKey, err := h.services.ListEvents(request.Context(), request.URL.Query().Get("pagination_key"))
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(events, nextKey), nil
}
