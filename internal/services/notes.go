package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

type NotePublic struct {
	IssuerPkHex     string `json:"issuer_pubkey"`
	RecipientPkHex  string `json:"recipient_pubkey"`
	OriginalAmount  uint64 `json:"original_amount"`
	RemainingAmount uint64 `json:"remaining_amount"`
	IssuedAt        uint64 `json:"issued_at"`
	SignatureHex    string `json:"issuer_signature"`
	State           string `json:"state"`
	LastRedeemedAt  uint64 `json:"last_redeemed_at,omitempty"`
}

func fromNoteDocument(d *model.NoteDocument) *NotePublic {
	return &NotePublic{
		IssuerPkHex:     d.IssuerPkHex,
		RecipientPkHex:  d.RecipientPkHex,
		OriginalAmount:  d.OriginalAmount,
		RemainingAmount: d.RemainingAmount,
		IssuedAt:        d.IssuedAt,
		SignatureHex:    d.SignatureHex,
		State:           d.State.ToString(),
		LastRedeemedAt:  d.LastRedeemedAt,
	}
}

// CreateNote verifies the issuer's signature over the note terms and stores
// the note with its full amount outstanding.
func (s *Services) CreateNote(
	ctx context.Context, issuerPkHex, recipientPkHex string, amount, timestamp uint64, signatureHex string,
) (*NotePublic, *types.Error) {
	issuerPk, err := parsePubKey("issuer_pubkey", issuerPkHex)
	if err != nil {
		return nil, err
	}
	recipientPk, err := parsePubKey("recipient_pubkey", recipientPkHex)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	signature, sigErr := utils.ParseSignatureHex(signatureHex)
	if sigErr != nil {
		return nil, types.NewFieldError(http.StatusBadRequest, types.InvalidSignature, "signature", sigErr.Error())
	}

	message := utils.NoteMessage(issuerPk, recipientPk, amount, timestamp)
	if !utils.VerifySignature(issuerPk, message, signature) {
		log.Ctx(ctx).Warn().Str("issuer", issuerPkHex).Msg("note signature does not verify against issuer key")
		return nil, types.NewFieldError(
			http.StatusBadRequest, types.InvalidSignature, "signature", "signature does not match issuer and note terms",
		)
	}

	// keys are stored in their canonical lower case form
	issuerPkHex, recipientPkHex = hexKey(issuerPk), hexKey(recipientPk)
	note := model.NewNoteDocument(issuerPkHex, recipientPkHex, amount, timestamp, hexKey(signature))
	dbErr := s.commitNote(ctx, leafOf(note), func(commitment *model.EventDocument) error {
		return s.DbClient.SaveNote(ctx, note, commitment)
	})
	if dbErr != nil {
		if db.IsDuplicateKeyError(dbErr) {
			log.Ctx(ctx).Warn().Err(dbErr).Msg("note already exists")
			return nil, types.NewErrorWithMsg(
				http.StatusConflict, types.DuplicateNote, "a note already exists for this issuer and recipient",
			)
		}
		log.Ctx(ctx).Error().Err(dbErr).Msg("failed to save note")
		return nil, types.NewInternalServiceError(dbErr)
	}
	s.checkCollateralAlert(ctx, issuerPkHex)
	return fromNoteDocument(note), nil
}

func (s *Services) GetNote(ctx context.Context, issuerPkHex, recipientPkHex string) (*NotePublic, *types.Error) {
	issuerPk, err := parsePubKey("issuer_pubkey", issuerPkHex)
	if err != nil {
		return nil, err
	}
	recipientPk, err := parsePubKey("recipient_pubkey", recipientPkHex)
	if err != nil {
		return nil, err
	}
	note, dbErr := s.DbClient.FindNote(ctx, hexKey(issuerPk), hexKey(recipientPk))
	if dbErr != nil {
		return nil, noteLookupError(ctx, dbErr)
	}
	return fromNoteDocument(note), nil
}

func (s *Services) NotesByIssuer(
	ctx context.Context, issuerPkHex, paginationKey string,
) ([]*NotePublic, string, *types.Error) {
	issuerPk, err := parsePubKey("issuer_pubkey", issuerPkHex)
	if err != nil {
		return nil, "", err
	}
	result, dbErr := s.DbClient.FindNotesByIssuer(ctx, hexKey(issuerPk), paginationKey)
	if dbErr != nil {
		return nil, "", paginationError(ctx, dbErr)
	}
	return toNotePublics(result.Data), result.PaginationToken, nil
}

func (s *Services) NotesByRecipient(
	ctx context.Context, recipientPkHex, paginationKey string,
) ([]*NotePublic, string, *types.Error) {
	recipientPk, err := parsePubKey("recipient_pubkey", recipientPkHex)
	if err != nil {
		return nil, "", err
	}
	result, dbErr := s.DbClient.FindNotesByRecipient(ctx, hexKey(recipientPk), paginationKey)
	if dbErr != nil {
		return nil, "", paginationError(ctx, dbErr)
	}
	return toNotePublics(result.Data), result.PaginationToken, nil
}

func toNotePublics(docs []model.NoteDocument) []*NotePublic {
	notes := make([]*NotePublic, 0, len(docs))
	for i := range docs {
		notes = append(notes, fromNoteDocument(&docs[i]))
	}
	return notes
}

func noteLookupError(ctx context.Context, err error) *types.Error {
	if db.IsNotFoundError(err) {
		log.Ctx(ctx).Debug().Err(err).Msg("note not found")
		return types.NewErrorWithMsg(http.StatusNotFound, types.NoteNotFound, "note not found")
	}
	log.Ctx(ctx).Error().Err(err).Msg("failed to find note")
	return types.NewInternalServiceError(err)
}
