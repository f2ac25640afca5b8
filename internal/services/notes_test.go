package services_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basisledger/iou-ledger-service/internal/services"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

func TestCreateThenGetNote(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, recipient := newParty(t), newParty(t)

	sig := issuer.sign(t, utils.NoteMessage(issuer.pk, recipient.pk, 1000, 77))
	created, err := s.CreateNote(ctx, strings.ToUpper(issuer.pkHex), recipient.pkHex, 1000, 77, sig)
	require.Nil(t, err)
	assert.Equal(t, issuer.pkHex, created.IssuerPkHex, "keys are stored lower case")

	note, err := s.GetNote(ctx, issuer.pkHex, recipient.pkHex)
	require.Nil(t, err)
	assert.Equal(t, uint64(1000), note.OriginalAmount)
	assert.Equal(t, uint64(1000), note.RemainingAmount)
	assert.Equal(t, uint64(77), note.IssuedAt)
	assert.Equal(t, types.NoteActive.ToString(), note.State)
}

func TestCreateNoteRejections(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, recipient, stranger := newParty(t), newParty(t), newParty(t)
	goodSig := issuer.sign(t, utils.NoteMessage(issuer.pk, recipient.pk, 1000, 1))

	tests := []struct {
		name      string
		issuer    string
		recipient string
		amount    uint64
		sig       string
		status    int
		code      types.ErrorCode
		field     string
	}{
		{"malformed issuer", "02abcd", recipient.pkHex, 1000, goodSig, http.StatusBadRequest, types.MalformedKey, "issuer_pubkey"},
		{"malformed recipient", issuer.pkHex, "zz", 1000, goodSig, http.StatusBadRequest, types.MalformedKey, "recipient_pubkey"},
		{"zero amount", issuer.pkHex, recipient.pkHex, 0, goodSig, http.StatusBadRequest, types.MalformedAmount, "amount"},
		{"amount too large", issuer.pkHex, recipient.pkHex, services.MaxAmount + 1, goodSig, http.StatusBadRequest, types.MalformedAmount, "amount"},
		{"short signature", issuer.pkHex, recipient.pkHex, 1000, goodSig[:10], http.StatusBadRequest, types.InvalidSignature, "signature"},
		{"tampered amount", issuer.pkHex, recipient.pkHex, 1001, goodSig, http.StatusBadRequest, types.InvalidSignature, "signature"},
		{
			"signed by recipient", issuer.pkHex, recipient.pkHex, 1000,
			stranger.sign(t, utils.NoteMessage(issuer.pk, recipient.pk, 1000, 1)),
			http.StatusBadRequest, types.InvalidSignature, "signature",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateNote(ctx, tc.issuer, tc.recipient, tc.amount, 1, tc.sig)
			require.NotNil(t, err)
			assert.Equal(t, tc.status, err.StatusCode)
			assert.Equal(t, tc.code, err.ErrorCode)
			assert.Equal(t, tc.field, err.Field)
		})
	}

	_, err := s.GetNote(ctx, issuer.pkHex, recipient.pkHex)
	require.NotNil(t, err)
	assert.Equal(t, types.NoteNotFound, err.ErrorCode)
}

func TestCreateNoteDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, recipient := newParty(t), newParty(t)
	issue(t, s, issuer, recipient, 1000)

	sig := issuer.sign(t, utils.NoteMessage(issuer.pk, recipient.pk, 5, 2))
	_, err := s.CreateNote(ctx, issuer.pkHex, recipient.pkHex, 5, 2, sig)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, types.DuplicateNote, err.ErrorCode)

	note, getErr := s.GetNote(ctx, issuer.pkHex, recipient.pkHex)
	require.Nil(t, getErr)
	assert.Equal(t, uint64(1000), note.RemainingAmount)
}

func TestNotesByParty(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, a, b := newParty(t), newParty(t), newParty(t)
	issue(t, s, issuer, a, 10)
	issue(t, s, issuer, b, 20)
	issue(t, s, a, b, 30)

	notes, next, err := s.NotesByIssuer(ctx, issuer.pkHex, "")
	require.Nil(t, err)
	assert.Len(t, notes, 2)
	assert.Empty(t, next)

	notes, _, err = s.NotesByRecipient(ctx, b.pkHex, "")
	require.Nil(t, err)
	assert.Len(t, notes, 2)

	_, _, err = s.NotesByIssuer(ctx, issuer.pkHex, "not-a-token")
	require.NotNil(t, err)
	assert.Equal(t, types.BadRequest, err.ErrorCode)
}
