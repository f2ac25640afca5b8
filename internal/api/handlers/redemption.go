package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/basisledger/iou-ledger-service/internal/services"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

type PrepareRedemptionRequestPayload struct {
	IssuerPkHex    string `json:"issuer_pubkey" validate:"required,hexadecimal,len=66"`
	RecipientPkHex string `json:"recipient_pubkey" validate:"required,hexadecimal,len=66"`
	Amount         uint64 `json:"amount"`
	Timestamp      uint64 `json:"timestamp"`
}

// The signature is checked by the redemption engine itself, after the note
// and balance checks, so it carries no validation tags.
type RedeemRequestPayload struct {
	PrepareRedemptionRequestPayload
	SignatureHex string `json:"signature"`
}

func (p *PrepareRedemptionRequestPayload) toRequest(signatureHex string) *services.RedemptionRequest {
	return &services.RedemptionRequest{
		IssuerPkHex:    p.IssuerPkHex,
		RecipientPkHex: p.RecipientPkHex,
		Amount:         p.Amount,
		Timestamp:      p.Timestamp,
		SignatureHex:   signatureHex,
	}
}

// PrepareRedemption godoc
// @Summary Prepare a redemption
// @Description Checks a redemption against the current ledger and returns the message to sign. Nothing is written.
// @Accept json
// @Produce json
// @Param payload body PrepareRedemptionRequestPayload true "Redemption terms"
// @Success 200 {object} PublicResponse[services.PreparedRedemptionPublic] "Message to sign"
// @Failure 400 {object} api.ErrorResponse "Malformed key or amount"
// @Failure 404 {object} api.ErrorResponse "Note not found"
// @Failure 422 {object} api.ErrorResponse "Insufficient balance or collateral"
// @Router /v1/redeem/prepare [post]
func (h *Handler) PrepareRedemption(request *http.Request) (*Result, *types.Error) {
	payload := &PrepareRedemptionRequestPayload{}
	if err := h.decodePayload(request, payload); err != nil {
		return nil, err
	}
	prepared, err := h.services.PrepareRedemption(request.Context(), payload.toRequest(""))
	if err != nil {
		return nil, err
	}
	return NewResult(prepared), nil
}

// Redeem godoc
// @Summary Redeem part of a note
// @Description Debits the note and moves the amount onto the issuer's reserves as debt.
// @Description The signature must be made by the issuer or the recipient over the prepared message.
// @Description Repeating a committed request returns the original receipt.
// @Accept json
// @Produce json
// @Param payload body RedeemRequestPayload true "Redemption terms and signature"
// @Success 200 {object} PublicResponse[services.RedemptionReceiptPublic] "Receipt"
// @Failure 400 {object} api.ErrorResponse "Malformed key or amount"
// @Failure 401 {object} api.ErrorResponse "Signature is not from the issuer or the recipient"
// @Failure 404 {object} api.ErrorResponse "Note not found"
// @Failure 409 {object} api.ErrorResponse "Concurrent redemption, retry"
// @Failure 422 {object} api.ErrorResponse "Insufficient balance or collateral"
// @Router /v1/redeem [post]
func (h *Handler) Redeem(request *http.Request) (*Result, *types.Error) {
	payload := &RedeemRequestPayload{}
	if err := h.decodePayload(request, payload); err != nil {
		return nil, err
	}
	receipt, err := h.services.Redeem(request.Context(), payload.toRequest(payload.SignatureHex))
	if err != nil {
		return nil, err
	}
	return NewResult(receipt), nil
}

// GetRedemption godoc
// @Summary Get a redemption receipt
// @Produce json
// @Param redemption_id path string true "Redemption id"
// @Success 200 {object} PublicResponse[services.RedemptionReceiptPublic] "Receipt"
// @Failure 400 {object} api.ErrorResponse "Invalid redemption id"
// @Failure 404 {object} api.ErrorResponse "Redemption not found"
// @Router /v1/redemptions/{redemption_id} [get]
func (h *Handler) GetRedemption(request *http.Request) (*Result, *types.Error) {
	receipt, err := h.services.GetRedemption(request.Context(), chi.URLParam(request, "redemption_id"))
	if err != nil {
		return nil, err
	}
	return NewResult(receipt), nil
}
