package db_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

func reserve(boxId string, collateral, debt uint64, createdAt int64) model.ReserveDocument {
	return model.ReserveDocument{
		BoxId:            boxId,
		OwnerPkHex:       "owner",
		CollateralAmount: collateral,
		TotalDebt:        debt,
		CreatedAt:        createdAt,
	}
}

func TestAllocateDebtLargestAvailableFirst(t *testing.T) {
	reserves := []model.ReserveDocument{
		reserve("a", 100, 0, 1),
		reserve("b", 500, 100, 2), // 400 available
		reserve("c", 300, 0, 3),
	}

	allocations, err := db.AllocateDebt("owner", reserves, 600)
	require.NoError(t, err)
	require.Len(t, allocations, 2)

	assert.Equal(t, model.DebtAllocation{BoxId: "b", DebtIncrease: 400, TotalDebt: 500, CollateralAmount: 500}, allocations[0])
	assert.Equal(t, model.DebtAllocation{BoxId: "c", DebtIncrease: 200, TotalDebt: 200, CollateralAmount: 300}, allocations[1])
	// input untouched
	assert.Equal(t, uint64(100), reserves[1].TotalDebt)
}

func TestAllocateDebtTieBreaks(t *testing.T) {
	reserves := []model.ReserveDocument{
		reserve("z", 100, 0, 5),
		reserve("y", 100, 0, 1),
		reserve("x", 100, 0, 5),
	}
	allocations, err := db.AllocateDebt("owner", reserves, 250)
	require.NoError(t, err)
	require.Len(t, allocations, 3)
	assert.Equal(t, "y", allocations[0].BoxId)
	assert.Equal(t, "x", allocations[1].BoxId)
	assert.Equal(t, "z", allocations[2].BoxId)
	assert.Equal(t, uint64(50), allocations[2].DebtIncrease)
}

func TestAllocateDebtInsufficientCollateral(t *testing.T) {
	reserves := []model.ReserveDocument{reserve("a", 100, 60, 1), reserve("b", 10, 0, 2)}

	_, err := db.AllocateDebt("owner", reserves, 51)
	require.Error(t, err)
	assert.True(t, db.IsInsufficientCollateralError(err))

	_, err = db.AllocateDebt("owner", reserves, 50)
	assert.NoError(t, err)
}

func TestAvailableCollateralIgnoresOverdrawnReserves(t *testing.T) {
	reserves := []model.ReserveDocument{reserve("a", 100, 150, 1), reserve("b", 10, 0, 2)}
	assert.Equal(t, uint64(10), db.AvailableCollateral(reserves))
}

func TestAvailableCollateralSaturates(t *testing.T) {
	reserves := []model.ReserveDocument{
		reserve("a", math.MaxInt64, 0, 1),
		reserve("b", math.MaxInt64, 0, 2),
		reserve("c", 2, 0, 3),
	}
	assert.Equal(t, uint64(math.MaxUint64), db.AvailableCollateral(reserves))

	allocations, err := db.AllocateDebt("owner", reserves, 10)
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, "a", allocations[0].BoxId)

	assert.Equal(t, uint64(math.MaxUint64), db.AddSaturating(math.MaxUint64, 1))
	assert.Equal(t, uint64(7), db.AddSaturating(3, 4))
}

func TestSortReservesByInsertion(t *testing.T) {
	reserves := []model.ReserveDocument{reserve("b", 1, 0, 2), reserve("c", 1, 0, 1), reserve("a", 1, 0, 2)}
	db.SortReservesByInsertion(reserves)
	assert.Equal(t, "c", reserves[0].BoxId)
	assert.Equal(t, "a", reserves[1].BoxId)
	assert.Equal(t, "b", reserves[2].BoxId)
}

func TestApplyRedemption(t *testing.T) {
	note := model.NewNoteDocument("owner", "recipient", 1000, 1, "sig")
	reserves := []model.ReserveDocument{reserve("a", 2000, 0, 1), reserve("b", 10, 0, 2)}
	request := &model.RedemptionRequestDocument{
		RedemptionId:   "id",
		IssuerPkHex:    "owner",
		RecipientPkHex: "recipient",
		Amount:         500,
		Timestamp:      42,
		AuthorizedBy:   types.AuthorizedByRecipient,
	}
	now := time.Unix(100, 0)

	outcome, err := db.ApplyRedemption(note, reserves, request, now)
	require.NoError(t, err)

	assert.Equal(t, uint64(500), outcome.Note.RemainingAmount)
	assert.Equal(t, types.NotePartiallyRedeemed, outcome.Note.State)
	assert.Equal(t, uint64(42), outcome.Note.LastRedeemedAt)
	assert.Equal(t, uint64(1000), note.RemainingAmount, "input note must not change")

	require.Len(t, outcome.Reserves, 1)
	assert.Equal(t, "a", outcome.Reserves[0].BoxId)
	assert.Equal(t, uint64(500), outcome.Reserves[0].TotalDebt)

	assert.Equal(t, uint64(500), outcome.Redemption.RemainingAmount)
	assert.Equal(t, int64(100), outcome.Redemption.CommittedAt)
	assert.Equal(t, types.NoteRedeemedEvent, outcome.Event.EventType)
	assert.Equal(t, "id", outcome.Event.RedemptionId)

	request.Amount = 500
	fullNote := outcome.Note
	outcome, err = db.ApplyRedemption(&fullNote, reserves, request, now)
	require.NoError(t, err)
	assert.Equal(t, types.NoteFullyRedeemed, outcome.Note.State)
}

func TestApplyRedemptionRejectsOverdraw(t *testing.T) {
	note := model.NewNoteDocument("owner", "recipient", 1000, 1, "sig")
	note.RemainingAmount = 500
	reserves := []model.ReserveDocument{reserve("a", 2000, 0, 1)}

	for _, amount := range []uint64{0, 501} {
		_, err := db.ApplyRedemption(note, reserves, &model.RedemptionRequestDocument{Amount: amount}, time.Now())
		require.Error(t, err)
		assert.True(t, db.IsInsufficientBalanceError(err), "amount %d", amount)
	}

	_, err := db.ApplyRedemption(note, []model.ReserveDocument{reserve("a", 100, 0, 1)},
		&model.RedemptionRequestDocument{Amount: 200}, time.Now())
	assert.True(t, db.IsInsufficientCollateralError(err))
}

func TestApplyReserveUpdate(t *testing.T) {
	now := time.Unix(10, 0)

	created, event, err := db.ApplyReserveUpdate(nil, "box", "owner", 100, now)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), created.TotalDebt)
	assert.Equal(t, now.UnixNano(), created.CreatedAt)
	assert.Equal(t, types.ReserveCreatedEvent, event.EventType)

	created.TotalDebt = 80
	later := now.Add(time.Second)
	updated, event, err := db.ApplyReserveUpdate(created, "box", "owner", 80, later)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), updated.CollateralAmount)
	assert.Equal(t, now.UnixNano(), updated.CreatedAt)
	assert.Equal(t, later.UnixNano(), updated.UpdatedAt)
	assert.Equal(t, types.ReserveUpdatedEvent, event.EventType)

	_, _, err = db.ApplyReserveUpdate(created, "box", "owner", 79, later)
	assert.True(t, db.IsInvalidReserveUpdateError(err))

	_, _, err = db.ApplyReserveUpdate(created, "box", "someone else", 200, later)
	assert.True(t, db.IsInvalidReserveUpdateError(err))
}

func TestApplyReserveSpend(t *testing.T) {
	_, err := db.ApplyReserveSpend(nil, "box", "owner")
	assert.True(t, db.IsNotFoundError(err))

	backing := reserve("box", 100, 1, 1)
	_, err = db.ApplyReserveSpend(&backing, "box", "owner")
	assert.True(t, db.IsInvalidReserveUpdateError(err))

	idle := reserve("box", 100, 0, 1)
	_, err = db.ApplyReserveSpend(&idle, "box", "someone else")
	assert.True(t, db.IsInvalidReserveUpdateError(err))

	event, err := db.ApplyReserveSpend(&idle, "box", "owner")
	require.NoError(t, err)
	assert.Equal(t, types.ReserveSpentEvent, event.EventType)
	assert.Equal(t, "box", event.ReserveBoxId)
	assert.Equal(t, "owner", event.IssuerPkHex)
}

func TestApplyRedemptionRejectsStaleBalance(t *testing.T) {
	note := model.NewNoteDocument("owner", "recipient", 1000, 1, "sig")
	note.RemainingAmount = 900
	reserves := []model.ReserveDocument{reserve("a", 2000, 100, 1)}

	_, err := db.ApplyRedemption(note, reserves, &model.RedemptionRequestDocument{Amount: 10, ExpectedRemaining: 1000}, time.Now())
	require.Error(t, err)
	assert.True(t, db.IsConflictError(err))

	outcome, err := db.ApplyRedemption(note, reserves, &model.RedemptionRequestDocument{Amount: 10, ExpectedRemaining: 900}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, uint64(890), outcome.Note.RemainingAmount)
}
