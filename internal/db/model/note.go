package model

import (
	"github.com/basisledger/iou-ledger-service/internal/types"
)

type NoteDocument struct {
	Id              string          `bson:"_id"` // Primary key, see NoteId
	IssuerPkHex     string          `bson:"issuer_pk_hex"`
	RecipientPkHex  string          `bson:"recipient_pk_hex"`
	OriginalAmount  uint64          `bson:"original_amount"`
	RemainingAmount uint64          `bson:"remaining_amount"`
	IssuedAt        uint64          `bson:"issued_at"`
	SignatureHex    string          `bson:"signature_hex"`
	State           types.NoteState `bson:"state"`
	LastRedeemedAt  uint64          `bson:"last_redeemed_at"`
}

// NoteId is the storage key of the note between an issuer and a recipient.
func NoteId(issuerPkHex, recipientPkHex string) string {
	return issuerPkHex + ":" + recipientPkHex
}

func NewNoteDocument(
	issuerPkHex, recipientPkHex string, amount, issuedAt uint64, signatureHex string,
) *NoteDocument {
	return &NoteDocument{
		Id:              NoteId(issuerPkHex, recipientPkHex),
		IssuerPkHex:     issuerPkHex,
		RecipientPkHex:  recipientPkHex,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		IssuedAt:        issuedAt,
		SignatureHex:    signatureHex,
		State:           types.NoteActive,
	}
}

// NotePagination orders notes of a party by issuance time, newest first.
type NotePagination struct {
	IssuedAt uint64 `json:"issued_at"`
	Id       string `json:"id"`
}

func BuildNotePaginationToken(d NoteDocument) (string, error) {
	return GetPaginationToken(NotePagination{
		IssuedAt: d.IssuedAt,
		Id:       d.Id,
	})
}
