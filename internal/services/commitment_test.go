package services_test

import (
	"context"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/bitmark-inc/bitmarkd/merkle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basisledger/iou-ledger-service/internal/commitment"
	"github.com/basisledger/iou-ledger-service/internal/db/leveldb"
	"github.com/basisledger/iou-ledger-service/internal/services"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

func digestOf(t *testing.T, s string) merkle.Digest {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	var d merkle.Digest
	require.NoError(t, merkle.DigestFromBytes(&d, raw))
	return d
}

// verify replays a served proof against its root.
func verify(t *testing.T, p *services.NoteProofPublic) bool {
	t.Helper()
	proof := &commitment.Proof{
		Leaf: commitment.Leaf{
			IssuerPkHex:     p.IssuerPkHex,
			RecipientPkHex:  p.RecipientPkHex,
			OriginalAmount:  p.OriginalAmount,
			RemainingAmount: p.RemainingAmount,
		},
		LeafIndex: p.LeafIndex,
		LeafCount: p.NoteCount,
		Root:      digestOf(t, p.RootDigest),
	}
	for _, step := range p.Path {
		proof.Path = append(proof.Path, commitment.ProofStep{
			Sibling: digestOf(t, step.Digest),
			Left:    step.Position == "left",
		})
	}
	return proof.Verify()
}

func TestCommitmentFollowsNoteChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, a, b := newParty(t), newParty(t), newParty(t)

	empty, err := s.Commitment(ctx)
	require.Nil(t, err)
	assert.Equal(t, 0, empty.NoteCount)

	issue(t, s, issuer, a, 1000)
	afterA, err := s.Commitment(ctx)
	require.Nil(t, err)
	assert.Equal(t, 1, afterA.NoteCount)
	assert.NotEqual(t, empty.RootDigest, afterA.RootDigest)

	issue(t, s, issuer, b, 400)
	afterB, err := s.Commitment(ctx)
	require.Nil(t, err)
	assert.Equal(t, 2, afterB.NoteCount)
	assert.NotEqual(t, afterA.RootDigest, afterB.RootDigest)

	fund(t, s, "box-1", issuer, 2000)
	afterFund, err := s.Commitment(ctx)
	require.Nil(t, err)
	assert.Equal(t, afterB.RootDigest, afterFund.RootDigest, "reserves are not committed")

	_, err = s.Redeem(ctx, redemption(t, issuer, a, a, 250, 1))
	require.Nil(t, err)
	afterRedeem, err := s.Commitment(ctx)
	require.Nil(t, err)
	assert.Equal(t, 2, afterRedeem.NoteCount)
	assert.NotEqual(t, afterB.RootDigest, afterRedeem.RootDigest)

	proof, err := s.ProveNote(ctx, issuer.pkHex, a.pkHex)
	require.Nil(t, err)
	assert.Equal(t, afterRedeem.RootDigest, proof.RootDigest)
	assert.Equal(t, uint64(1000), proof.OriginalAmount)
	assert.Equal(t, uint64(750), proof.RemainingAmount)
	assert.True(t, verify(t, proof))

	proof.RemainingAmount = 1000
	assert.False(t, verify(t, proof), "stale balance must not verify")
}

func TestCommitmentIsStoredWithEachChange(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, recipient := newParty(t), newParty(t)
	issue(t, s, issuer, recipient, 1000)
	fund(t, s, "box-1", issuer, 1000)
	_, err := s.Redeem(ctx, redemption(t, issuer, recipient, recipient, 100, 1))
	require.Nil(t, err)

	root, err := s.Commitment(ctx)
	require.Nil(t, err)
	events, _, err := s.ListEvents(ctx, "")
	require.Nil(t, err)
	var latest *services.EventPublic
	for _, e := range events {
		if e.EventType == types.CommitmentEvent.ToString() {
			latest = e
			break
		}
	}
	require.NotNil(t, latest)
	assert.Equal(t, root.RootDigest, latest.CommitmentRoot)
	assert.Equal(t, issuer.pkHex, latest.IssuerPkHex)
	assert.Equal(t, recipient.pkHex, latest.RecipientPkHex)
}

func TestCommitmentIsRebuiltFromStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	database, err := leveldb.NewInMemory(cfg.Db.MaxPaginationLimit)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(context.Background()) }) // nolint:errcheck

	s := services.NewWithDbClient(cfg, database)
	issuer, a, b := newParty(t), newParty(t), newParty(t)
	issue(t, s, issuer, a, 1000)
	issue(t, s, issuer, b, 500)
	fund(t, s, "box-1", issuer, 1500)
	_, redeemErr := s.Redeem(ctx, redemption(t, issuer, b, issuer, 500, 1))
	require.Nil(t, redeemErr)
	want, commitErr := s.Commitment(ctx)
	require.Nil(t, commitErr)

	restarted := services.NewWithDbClient(cfg, database)
	got, commitErr := restarted.Commitment(ctx)
	require.Nil(t, commitErr)
	assert.Equal(t, want, got)
}

func TestProveNoteErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, recipient := newParty(t), newParty(t)
	issue(t, s, issuer, recipient, 10)

	_, err := s.ProveNote(ctx, recipient.pkHex, issuer.pkHex)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, types.NoteNotFound, err.ErrorCode)

	_, err = s.ProveNote(ctx, "zz", recipient.pkHex)
	require.NotNil(t, err)
	assert.Equal(t, types.MalformedKey, err.ErrorCode)
	assert.Equal(t, "issuer_pubkey", err.Field)
}

func TestDuplicateNoteLeavesCommitmentUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	issuer, recipient := newParty(t), newParty(t)
	issue(t, s, issuer, recipient, 10)
	before, err := s.Commitment(ctx)
	require.Nil(t, err)

	sig := issuer.sign(t, utils.NoteMessage(issuer.pk, recipient.pk, 99, 5))
	_, err = s.CreateNote(ctx, issuer.pkHex, recipient.pkHex, 99, 5, sig)
	require.NotNil(t, err)
	assert.Equal(t, types.DuplicateNote, err.ErrorCode)

	after, err := s.Commitment(ctx)
	require.Nil(t, err)
	assert.Equal(t, before, after)
	proof, err := s.ProveNote(ctx, issuer.pkHex, recipient.pkHex)
	require.Nil(t, err)
	assert.Equal(t, uint64(10), proof.OriginalAmount)
}
