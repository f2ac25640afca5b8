package db

import (
	"math"
	"sort"
	"time"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

// Commit rules shared by the storage engines. Engines load the current
// documents inside their transaction, call into these helpers and persist
// whatever comes back.

// RedemptionOutcome holds the documents a committed redemption writes.
type RedemptionOutcome struct {
	Note       model.NoteDocument
	Reserves   []model.ReserveDocument // only the reserves whose debt changed
	Redemption model.RedemptionDocument
	Event      *model.EventDocument
}

// AvailableCollateral sums collateral not yet backing debt, saturating at
// math.MaxUint64.
func AvailableCollateral(reserves []model.ReserveDocument) uint64 {
	var total uint64
	for i := range reserves {
		total = AddSaturating(total, reserves[i].Available())
	}
	return total
}

// AddSaturating returns a+b, or math.MaxUint64 when the sum does not fit.
func AddSaturating(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// SortReservesByInsertion orders reserves by first custody report, then box id.
func SortReservesByInsertion(reserves []model.ReserveDocument) {
	sort.SliceStable(reserves, func(i, j int) bool {
		if reserves[i].CreatedAt != reserves[j].CreatedAt {
			return reserves[i].CreatedAt < reserves[j].CreatedAt
		}
		return reserves[i].BoxId < reserves[j].BoxId
	})
}

// AllocateDebt spreads amount over the reserves, largest available collateral
// first, ties broken by insertion order and then box id. Each reserve takes
// at most its available collateral. The input slice is not modified.
func AllocateDebt(ownerPkHex string, reserves []model.ReserveDocument, amount uint64) ([]model.DebtAllocation, error) {
	available := AvailableCollateral(reserves)
	if amount > available {
		return nil, &InsufficientCollateralError{
			OwnerPkHex: ownerPkHex,
			Available:  available,
			Requested:  amount,
		}
	}

	ordered := make([]model.ReserveDocument, len(reserves))
	copy(ordered, reserves)
	sort.SliceStable(ordered, func(i, j int) bool {
		ai, aj := ordered[i].Available(), ordered[j].Available()
		if ai != aj {
			return ai > aj
		}
		if ordered[i].CreatedAt != ordered[j].CreatedAt {
			return ordered[i].CreatedAt < ordered[j].CreatedAt
		}
		return ordered[i].BoxId < ordered[j].BoxId
	})

	var allocations []model.DebtAllocation
	remaining := amount
	for i := range ordered {
		if remaining == 0 {
			break
		}
		take := ordered[i].Available()
		if take == 0 {
			continue
		}
		if take > remaining {
			take = remaining
		}
		remaining -= take
		allocations = append(allocations, model.DebtAllocation{
			BoxId:            ordered[i].BoxId,
			DebtIncrease:     take,
			TotalDebt:        ordered[i].TotalDebt + take,
			CollateralAmount: ordered[i].CollateralAmount,
		})
	}
	return allocations, nil
}

// ApplyRedemption validates request against the committed note and reserves
// and computes the documents to write. Nothing is mutated in place.
func ApplyRedemption(
	note *model.NoteDocument, reserves []model.ReserveDocument,
	request *model.RedemptionRequestDocument, now time.Time,
) (*RedemptionOutcome, error) {
	if request.ExpectedRemaining != 0 && request.ExpectedRemaining != note.RemainingAmount {
		return nil, &ConcurrentUpdateError{Key: note.Id}
	}
	if request.Amount == 0 || request.Amount > note.RemainingAmount {
		return nil, &InsufficientBalanceError{
			NoteId:    note.Id,
			Remaining: note.RemainingAmount,
			Requested: request.Amount,
		}
	}

	allocations, err := AllocateDebt(note.IssuerPkHex, reserves, request.Amount)
	if err != nil {
		return nil, err
	}

	updatedNote := *note
	updatedNote.RemainingAmount = note.RemainingAmount - request.Amount
	updatedNote.State = types.NoteStateFor(note.OriginalAmount, updatedNote.RemainingAmount)
	updatedNote.LastRedeemedAt = request.Timestamp

	byBox := make(map[string]model.DebtAllocation, len(allocations))
	for _, a := range allocations {
		byBox[a.BoxId] = a
	}
	var touched []model.ReserveDocument
	for _, r := range reserves {
		a, ok := byBox[r.BoxId]
		if !ok {
			continue
		}
		r.TotalDebt = a.TotalDebt
		r.UpdatedAt = now.UnixNano()
		touched = append(touched, r)
	}

	redemption := model.RedemptionDocument{
		RedemptionId:    request.RedemptionId,
		IssuerPkHex:     request.IssuerPkHex,
		RecipientPkHex:  request.RecipientPkHex,
		Amount:          request.Amount,
		Timestamp:       request.Timestamp,
		AuthorizedBy:    request.AuthorizedBy,
		SignatureHex:    request.SignatureHex,
		RemainingAmount: updatedNote.RemainingAmount,
		Allocations:     allocations,
		CommittedAt:     now.Unix(),
	}

	event, err := model.NewEventDocument(types.NoteRedeemedEvent)
	if err != nil {
		return nil, err
	}
	event.IssuerPkHex = request.IssuerPkHex
	event.RecipientPkHex = request.RecipientPkHex
	event.Amount = request.Amount
	event.RedemptionId = request.RedemptionId

	return &RedemptionOutcome{
		Note:       updatedNote,
		Reserves:   touched,
		Redemption: redemption,
		Event:      event,
	}, nil
}

// ApplyReserveUpdate computes the reserve after a custody report. existing is
// nil for a box seen for the first time.
func ApplyReserveUpdate(
	existing *model.ReserveDocument, boxId, ownerPkHex string, collateralAmount uint64, now time.Time,
) (*model.ReserveDocument, *model.EventDocument, error) {
	if existing == nil {
		reserve := &model.ReserveDocument{
			BoxId:            boxId,
			OwnerPkHex:       ownerPkHex,
			CollateralAmount: collateralAmount,
			CreatedAt:        now.UnixNano(),
			UpdatedAt:        now.UnixNano(),
		}
		event, err := newReserveEvent(types.ReserveCreatedEvent, reserve)
		if err != nil {
			return nil, nil, err
		}
		return reserve, event, nil
	}

	if existing.OwnerPkHex != ownerPkHex {
		return nil, nil, &InvalidReserveUpdateError{
			BoxId:   boxId,
			Message: "reserve box is owned by a different key",
		}
	}
	if collateralAmount < existing.TotalDebt {
		return nil, nil, &InvalidReserveUpdateError{
			BoxId:   boxId,
			Message: "collateral cannot drop below the debt already backed by the reserve",
		}
	}

	reserve := *existing
	reserve.CollateralAmount = collateralAmount
	reserve.UpdatedAt = now.UnixNano()
	event, err := newReserveEvent(types.ReserveUpdatedEvent, &reserve)
	if err != nil {
		return nil, nil, err
	}
	return &reserve, event, nil
}

// ApplyReserveSpend checks that a reserve box may leave custody. Only a box
// that backs no debt can be spent. existing is nil for an unknown box.
func ApplyReserveSpend(existing *model.ReserveDocument, boxId, ownerPkHex string) (*model.EventDocument, error) {
	if existing == nil {
		return nil, &NotFoundError{Key: boxId, Message: "reserve not found"}
	}
	if existing.OwnerPkHex != ownerPkHex {
		return nil, &InvalidReserveUpdateError{
			BoxId:   boxId,
			Message: "reserve box is owned by a different key",
		}
	}
	if existing.TotalDebt > 0 {
		return nil, &InvalidReserveUpdateError{
			BoxId:   boxId,
			Message: "reserve box still backs debt and cannot be spent",
		}
	}
	return newReserveEvent(types.ReserveSpentEvent, existing)
}

func newReserveEvent(eventType types.EventType, reserve *model.ReserveDocument) (*model.EventDocument, error) {
	event, err := model.NewEventDocument(eventType)
	if err != nil {
		return nil, err
	}
	event.IssuerPkHex = reserve.OwnerPkHex
	event.ReserveBoxId = reserve.BoxId
	event.CollateralAmount = reserve.CollateralAmount
	return event, nil
}

// NewNoteCreatedEvent describes a freshly saved note.
func NewNoteCreatedEvent(note *model.NoteDocument) (*model.EventDocument, error) {
	event, err := model.NewEventDocument(types.NoteCreatedEvent)
	if err != nil {
		return nil, err
	}
	event.IssuerPkHex = note.IssuerPkHex
	event.RecipientPkHex = note.RecipientPkHex
	event.Amount = note.OriginalAmount
	return event, nil
}

// NewCommitmentEvent records the commitment root after the note of issuer
// and recipient changed.
func NewCommitmentEvent(issuerPkHex, recipientPkHex, root string, noteCount int) (*model.EventDocument, error) {
	event, err := model.NewEventDocument(types.CommitmentEvent)
	if err != nil {
		return nil, err
	}
	event.IssuerPkHex = issuerPkHex
	event.RecipientPkHex = recipientPkHex
	event.CommitmentRoot = root
	event.NoteCount = uint64(noteCount)
	return event, nil
}

// NewCollateralAlertEvent flags an issuer whose collateralization ratio
// dropped below the alert threshold.
func NewCollateralAlertEvent(issuerPkHex string, ratio float64) (*model.EventDocument, error) {
	event, err := model.NewEventDocument(types.CollateralAlert)
	if err != nil {
		return nil, err
	}
	event.IssuerPkHex = issuerPkHex
	event.Ratio = ratio
	return event, nil
}
