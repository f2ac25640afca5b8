package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

// GetReservesByIssuer godoc
// @Summary List an issuer's reserves
// @Description Reserves are returned in the order they were first reported.
// @Produce json
// @Param issuer_pubkey path string true "Issuer public key, compressed, hex"
// @Success 200 {object} PublicResponse[[]services.ReservePublic]{array} "Reserves"
// @Failure 400 {object} api.ErrorResponse "Malformed key"
// @Router /v1/reserves/issuer/{issuer_pubkey} [get]
func (h *Handler) GetReservesByIssuer(request *http.Request) (*Result, *types.Error) {
	reserves, err := h.services.ListReserves(request.Context(), chi.URLParam(request, "issuer_pubkey"))
	if err != nil {
		return nil, err
	}
	return NewResult(reserves), nil
}

// GetIssuerStatus godoc
// @Summary Get issuer status
// @Description Outstanding notes of an issuer against the collateral backing them.
// @Produce json
// @Param issuer_pubkey path string true "Issuer public key, compressed, hex"
// @Success 200 {object} PublicResponse[services.IssuerStatusPublic] "Issuer status"
// @Failure 400 {object} api.ErrorResponse "Malformed key"
// @Router /v1/issuers/{issuer_pubkey}/status [get]
func (h *Handler) GetIssuerStatus(request *http.Request) (*Result, *types.Error) {
	status, err := h.services.IssuerStatus(request.Context(), chi.URLParam(request, "issuer_pubkey"))
	if err != nil {
		return nil, err
	}
	return NewResult(status), nil
}
