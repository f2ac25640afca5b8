package leveldb_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/leveldb"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

func newTestDb(t *testing.T, limit int64) *leveldb.Database {
	t.Helper()
	database, err := leveldb.NewInMemory(limit)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(context.Background()) }) // nolint:errcheck
	return database
}

func redemptionRequest(id, issuer, recipient string, amount uint64) *model.RedemptionRequestDocument {
	return &model.RedemptionRequestDocument{
		RedemptionId:   id,
		IssuerPkHex:    issuer,
		RecipientPkHex: recipient,
		Amount:         amount,
		Timestamp:      1,
		AuthorizedBy:   types.AuthorizedByIssuer,
	}
}

func TestSaveAndFindNote(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)

	note := model.NewNoteDocument("issuer", "recipient", 1000, 10, "sig")
	require.NoError(t, database.SaveNote(ctx, note))

	found, err := database.FindNote(ctx, "issuer", "recipient")
	require.NoError(t, err)
	assert.Equal(t, *note, *found)

	err = database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 5, 11, "sig2"))
	assert.True(t, db.IsDuplicateKeyError(err))

	_, err = database.FindNote(ctx, "issuer", "nobody")
	assert.True(t, db.IsNotFoundError(err))
}

func TestFindNotesByPartyPaginates(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 2)

	for i := 0; i < 5; i++ {
		note := model.NewNoteDocument("issuer", fmt.Sprintf("recipient-%d", i), 10, uint64(100+i), "sig")
		require.NoError(t, database.SaveNote(ctx, note))
	}
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("other", "recipient-0", 10, 1, "sig")))

	var seen []uint64
	token := ""
	for page := 0; page < 5; page++ {
		result, err := database.FindNotesByIssuer(ctx, "issuer", token)
		require.NoError(t, err)
		for _, n := range result.Data {
			seen = append(seen, n.IssuedAt)
		}
		token = result.PaginationToken
		if token == "" {
			break
		}
	}
	assert.Equal(t, []uint64{104, 103, 102, 101, 100}, seen)

	byRecipient, err := database.FindNotesByRecipient(ctx, "recipient-0", "")
	require.NoError(t, err)
	assert.Len(t, byRecipient.Data, 2)

	_, err = database.FindNotesByIssuer(ctx, "issuer", "garbage")
	assert.True(t, db.IsInvalidPaginationTokenError(err))
}

func TestSumOutstandingByIssuer(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "a", 300, 1, "sig")))
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "b", 700, 2, "sig")))

	outstanding, count, err := database.SumOutstandingByIssuer(ctx, "issuer")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), outstanding)
	assert.Equal(t, uint64(2), count)
}

func TestReserveUpdates(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)

	_, err := database.SaveReserveUpdate(ctx, "box-b", "issuer", 100)
	require.NoError(t, err)
	_, err = database.SaveReserveUpdate(ctx, "box-a", "issuer", 50)
	require.NoError(t, err)
	updated, err := database.SaveReserveUpdate(ctx, "box-b", "issuer", 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), updated.CollateralAmount)

	_, err = database.SaveReserveUpdate(ctx, "box-b", "intruder", 150)
	assert.True(t, db.IsInvalidReserveUpdateError(err))

	reserves, err := database.FindReservesByOwner(ctx, "issuer")
	require.NoError(t, err)
	require.Len(t, reserves, 2)
	assert.Equal(t, "box-b", reserves[0].BoxId, "insertion order")
	assert.Equal(t, "box-a", reserves[1].BoxId)
}

func TestCommitRedemption(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 1000, 1, "sig")))
	_, err := database.SaveReserveUpdate(ctx, "box", "issuer", 800)
	require.NoError(t, err)

	redemption, err := database.CommitRedemption(ctx, redemptionRequest("r1", "issuer", "recipient", 500))
	require.NoError(t, err)
	assert.Equal(t, uint64(500), redemption.RemainingAmount)
	require.Len(t, redemption.Allocations, 1)
	assert.Equal(t, uint64(500), redemption.Allocations[0].TotalDebt)

	// same id returns the stored record and does not debit again
	again, err := database.CommitRedemption(ctx, redemptionRequest("r1", "issuer", "recipient", 500))
	require.NoError(t, err)
	assert.Equal(t, redemption.CommittedAt, again.CommittedAt)
	note, err := database.FindNote(ctx, "issuer", "recipient")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), note.RemainingAmount)
	assert.Equal(t, types.NotePartiallyRedeemed, note.State)

	_, err = database.CommitRedemption(ctx, redemptionRequest("r2", "issuer", "recipient", 600))
	assert.True(t, db.IsInsufficientBalanceError(err))

	_, err = database.CommitRedemption(ctx, redemptionRequest("r3", "issuer", "recipient", 400))
	assert.True(t, db.IsInsufficientCollateralError(err))

	_, err = database.CommitRedemption(ctx, redemptionRequest("r4", "issuer", "stranger", 1))
	assert.True(t, db.IsNotFoundError(err))

	// failed commits leave no trace
	note, err = database.FindNote(ctx, "issuer", "recipient")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), note.RemainingAmount)
	reserves, err := database.FindReservesByOwner(ctx, "issuer")
	require.NoError(t, err)
	assert.Equal(t, uint64(500), reserves[0].TotalDebt)

	found, err := database.FindRedemption(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", found.RedemptionId)
	_, err = database.FindRedemption(ctx, "r2")
	assert.True(t, db.IsNotFoundError(err))
}

func TestReserveCannotDropBelowDebt(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 1000, 1, "sig")))
	_, err := database.SaveReserveUpdate(ctx, "box", "issuer", 1000)
	require.NoError(t, err)
	_, err = database.CommitRedemption(ctx, redemptionRequest("r1", "issuer", "recipient", 600))
	require.NoError(t, err)

	_, err = database.SaveReserveUpdate(ctx, "box", "issuer", 599)
	assert.True(t, db.IsInvalidReserveUpdateError(err))
	_, err = database.SaveReserveUpdate(ctx, "box", "issuer", 600)
	assert.NoError(t, err)
}

func TestConcurrentCommitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 1000, 1, "sig")))
	_, err := database.SaveReserveUpdate(ctx, "box", "issuer", 10000)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := database.CommitRedemption(ctx, redemptionRequest(fmt.Sprintf("r%d", i), "issuer", "recipient", 100))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	note, err := database.FindNote(ctx, "issuer", "recipient")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), note.RemainingAmount)
	assert.Equal(t, types.NoteFullyRedeemed, note.State)
}

func TestFindEventsNewestFirst(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 2)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 1000, 1, "sig")))
	_, err := database.SaveReserveUpdate(ctx, "box", "issuer", 1000)
	require.NoError(t, err)
	_, err = database.CommitRedemption(ctx, redemptionRequest("r1", "issuer", "recipient", 10))
	require.NoError(t, err)

	first, err := database.FindEvents(ctx, "")
	require.NoError(t, err)
	require.Len(t, first.Data, 2)
	assert.Equal(t, types.NoteRedeemedEvent, first.Data[0].EventType)
	assert.Equal(t, types.ReserveCreatedEvent, first.Data[1].EventType)
	require.NotEmpty(t, first.PaginationToken)

	second, err := database.FindEvents(ctx, first.PaginationToken)
	require.NoError(t, err)
	require.Len(t, second.Data, 1)
	assert.Equal(t, types.NoteCreatedEvent, second.Data[0].EventType)
	assert.Empty(t, second.PaginationToken)
}

func TestSpendReserve(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 1000, 1, "sig")))
	_, err := database.SaveReserveUpdate(ctx, "backing", "issuer", 1000)
	require.NoError(t, err)
	_, err = database.CommitRedemption(ctx, redemptionRequest("r1", "issuer", "recipient", 100))
	require.NoError(t, err)
	_, err = database.SaveReserveUpdate(ctx, "idle", "issuer", 50)
	require.NoError(t, err)

	_, err = database.SpendReserve(ctx, "backing", "issuer")
	assert.True(t, db.IsInvalidReserveUpdateError(err), "box backs debt")
	_, err = database.SpendReserve(ctx, "idle", "intruder")
	assert.True(t, db.IsInvalidReserveUpdateError(err), "wrong owner")
	_, err = database.SpendReserve(ctx, "missing", "issuer")
	assert.True(t, db.IsNotFoundError(err))

	spent, err := database.SpendReserve(ctx, "idle", "issuer")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), spent.CollateralAmount)

	reserves, err := database.FindReservesByOwner(ctx, "issuer")
	require.NoError(t, err)
	require.Len(t, reserves, 1)
	assert.Equal(t, "backing", reserves[0].BoxId)
	_, err = database.SpendReserve(ctx, "idle", "issuer")
	assert.True(t, db.IsNotFoundError(err))

	events, err := database.FindEvents(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, types.ReserveSpentEvent, events.Data[0].EventType)
	assert.Equal(t, "idle", events.Data[0].ReserveBoxId)
}

func TestExtraEventsAreWrittenWithTheChange(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)

	commitment, err := db.NewCommitmentEvent("issuer", "recipient", "root-1", 1)
	require.NoError(t, err)
	require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 1000, 1, "sig"), commitment))

	// a rejected note drops its extra events too
	rejected, err := db.NewCommitmentEvent("issuer", "recipient", "root-x", 1)
	require.NoError(t, err)
	err = database.SaveNote(ctx, model.NewNoteDocument("issuer", "recipient", 5, 2, "sig"), rejected)
	require.True(t, db.IsDuplicateKeyError(err))

	_, err = database.SaveReserveUpdate(ctx, "box", "issuer", 1000)
	require.NoError(t, err)
	redeemed, err := db.NewCommitmentEvent("issuer", "recipient", "root-2", 1)
	require.NoError(t, err)
	_, err = database.CommitRedemption(ctx, redemptionRequest("r1", "issuer", "recipient", 10), redeemed)
	require.NoError(t, err)

	alert, err := db.NewCollateralAlertEvent("issuer", 0.5)
	require.NoError(t, err)
	require.NoError(t, database.SaveEvent(ctx, alert))

	events, err := database.FindEvents(ctx, "")
	require.NoError(t, err)
	var roots []string
	for _, e := range events.Data {
		if e.EventType == types.CommitmentEvent {
			roots = append(roots, e.CommitmentRoot)
		}
	}
	assert.Equal(t, []string{"root-2", "root-1"}, roots)
	assert.Equal(t, types.CollateralAlert, events.Data[0].EventType)
	assert.Equal(t, 0.5, events.Data[0].Ratio)
	assert.Len(t, events.Data, 6)
}

func TestFindAllNotes(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 1)

	notes, err := database.FindAllNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)

	for i := 0; i < 3; i++ {
		require.NoError(t, database.SaveNote(ctx, model.NewNoteDocument("issuer", fmt.Sprintf("recipient-%d", i), 10, 1, "sig")))
	}
	// not bound by the page size
	notes, err = database.FindAllNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestUnprocessableMessages(t *testing.T) {
	ctx := context.Background()
	database := newTestDb(t, 10)
	require.NoError(t, database.SaveUnprocessableMessage(ctx, "body-1", "s:1"))
	require.NoError(t, database.SaveUnprocessableMessage(ctx, "body-2", "s:2"))

	messages, err := database.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	require.NoError(t, database.DeleteUnprocessableMessage(ctx, "s:1"))
	messages, err = database.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "body-2", messages[0].MessageBody)
}
