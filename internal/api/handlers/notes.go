package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

type CreateNoteRequestPayload struct {
	IssuerPkHex    string `json:"issuer_pubkey" validate:"required,hexadecimal,len=66"`
	RecipientPkHex string `json:"recipient_pubkey" validate:"required,hexadecimal,len=66"`
	Amount         uint64 `json:"amount"`
	Timestamp      uint64 `json:"timestamp"`
	SignatureHex   string `json:"signature" validate:"required,hexadecimal,len=130"`
}

// CreateNote godoc
// @Summary Issue a note
// @Description Records a note signed by its issuer. At most one note may exist per issuer and recipient.
// @Accept json
// @Produce json
// @Param payload body CreateNoteRequestPayload true "Note terms and issuer signature"
// @Success 201 {object} PublicResponse[services.NotePublic] "Created note"
// @Failure 400 {object} api.ErrorResponse "Malformed key, amount or signature"
// @Failure 409 {object} api.ErrorResponse "A note already exists for the pair"
// @Router /v1/notes [post]
func (h *Handler) CreateNote(request *http.Request) (*Result, *types.Error) {
	payload := &CreateNoteRequestPayload{}
	if err := h.decodePayload(request, payload); err != nil {
		return nil, err
	}
	note, err := h.services.CreateNote(
		request.Context(), payload.IssuerPkHex, payload.RecipientPkHex,
		payload.Amount, payload.Timestamp, payload.SignatureHex,
	)
	if err != nil {
		return nil, err
	}
	return NewCreatedResult(note), nil
}

// GetNote godoc
// @Summary Get a note
// @Produce json
// @Param issuer_pubkey path string true "Issuer public key, compressed, hex"
// @Param recipient_pubkey path string true "Recipient public key, compressed, hex"
// @Success 200 {object} PublicResponse[services.NotePublic] "Note"
// @Failure 400 {object} api.ErrorResponse "Malformed key"
// @Failure 404 {object} api.ErrorResponse "Note not found"
// @Router /v1/notes/issuer/{issuer_pubkey}/recipient/{recipient_pubkey} [get]
func (h *Handler) GetNote(request *http.Request) (*Result, *types.Error) {
	note, err := h.services.GetNote(
		request.Context(), chi.URLParam(request, "issuer_pubkey"), chi.URLParam(request, "recipient_pubkey"),
	)
	if err != nil {
		return nil, err
	}
	return NewResult(note), nil
}

// GetNotesByIssuer godoc
// @Summary List notes issued by a key
// @Produce json
// @Param issuer_pubkey path string true "Issuer public key, compressed, hex"
// @Param pagination_key query string false "Pagination key to fetch the next page of notes"
// @Success 200 {object} PublicResponse[[]services.NotePublic]{array} "Notes and pagination token"
// @Failure 400 {object} api.ErrorResponse "Malformed key or pagination key"
// @Router /v1/notes/issuer/{issuer_pubkey} [get]
func (h *Handler) GetNotesByIssuer(request *http.Request) (*Result, *types.Error) {
	paginationKey := request.URL.Query().Get("pagination_key")
	notes, nextKey, err := h.services.NotesByIssuer(
		request.Context(), chi.URLParam(request, "issuer_pubkey"), paginationKey,
	)
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(notes, nextKey), nil
}

// GetNotesByRecipient godoc
// @Summary List notes held by a key
// @Produce json
// @Param recipient_pubkey path string true "Recipient public key, compressed, hex"
// @Param pagination_key query string false "Pagination key to fetch the next page of notes"
// @Success 200 {object} PublicResponse[[]services.NotePublic]{array} "Notes and pagination token"
// @Failure 400 {object} api.ErrorResponse "Malformed key or pagination key"
// @Router /v1/notes/recipient/{recipient_pubkey} [get]
func (h *Handler) GetNotesByRecipient(request *http.Request) (*Result, *types.Error) {
	paginationKey := request.URL.Query().Get("pagination_key")
	notes, nextKey, err := h.services.NotesByRecipient(
		request.Context(), chi.URLParam(request, "recipient_pubkey"), paginationKey,
	)
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(notes, nextKey), nil
}
