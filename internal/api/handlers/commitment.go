package handlers

import (
	"net/http"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

// GetCommitment godoc
// @Summary Get the note commitment
// @Description Merkle root over every note, ordered by issuer and recipient key.
// @Produce json
// @Success 200 {object} PublicResponse[services.CommitmentPublic] "Commitment root and note count"
// @Router /v1/commitment [get]
func (h *Handler) GetCommitment(request *http.Request) (*Result, *types.Error) {
	root, err := h.services.Commitment(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(root), nil
}

// GetNoteProof godoc
// @Summary Prove a note against the commitment
// @Produce json
// @Param issuer_pubkey query string true "Issuer public key, compressed, hex"
// @Param recipient_pubkey query string true "Recipient public key, compressed, hex"
// @Success 200 {object} PublicResponse[services.NoteProofPublic] "Inclusion proof"
// @Failure 400 {object} api.ErrorResponse "Malformed key"
// @Failure 404 {object} api.ErrorResponse "Note not found"
// @Router /v1/proof [get]
func (h *Handler) GetNoteProof(request *http.Request) (*Result, *types.Error) {
	query := request.URL.Query()
	proof, err := h.services.ProveNote(request.Context(), query.Get("issuer_pubkey"), query.Get("recipient_pubkey"))
	if err != nil {
		return nil, err
	}
	return NewResult(proof), nil
}
