package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

// CommitRedemption runs the whole redemption in one multi document transaction.
// The note and every touched reserve are updated conditionally on the values
// read inside the transaction, any mismatch aborts and retries.
func (db *Database) CommitRedemption(
	ctx context.Context, request *model.RedemptionRequestDocument, events ...*model.EventDocument,
) (*model.RedemptionDocument, error) {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		redemptions := db.collection(model.RedemptionCollection)
		notes := db.collection(model.NoteCollection)
		reserves := db.collection(model.ReserveCollection)

		var committed model.RedemptionDocument
		err := redemptions.FindOne(sessCtx, bson.M{"_id": request.RedemptionId}).Decode(&committed)
		if err == nil {
			return &committed, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		noteId := model.NoteId(request.IssuerPkHex, request.RecipientPkHex)
		var note model.NoteDocument
		if err := notes.FindOne(sessCtx, bson.M{"_id": noteId}).Decode(&note); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, &NotFoundError{Key: noteId, Message: "note not found"}
			}
			return nil, err
		}

		ownerReserves, err := db.findReservesByOwner(sessCtx, request.IssuerPkHex)
		if err != nil {
			return nil, err
		}

		outcome, err := ApplyRedemption(&note, ownerReserves, request, time.Now())
		if err != nil {
			return nil, err
		}

		res, err := notes.UpdateOne(sessCtx,
			bson.M{"_id": noteId, "remaining_amount": note.RemainingAmount},
			bson.M{"$set": bson.M{
				"remaining_amount": outcome.Note.RemainingAmount,
				"state":            outcome.Note.State,
				"last_redeemed_at": outcome.Note.LastRedeemedAt,
			}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, &ConcurrentUpdateError{Key: noteId}
		}

		for _, reserve := range outcome.Reserves {
			var previousDebt uint64
			for _, a := range outcome.Redemption.Allocations {
				if a.BoxId == reserve.BoxId {
					previousDebt = a.TotalDebt - a.DebtIncrease
				}
			}
			res, err := reserves.UpdateOne(sessCtx,
				bson.M{"_id": reserve.BoxId, "total_debt": previousDebt},
				bson.M{"$set": bson.M{
					"total_debt": reserve.TotalDebt,
					"updated_at": reserve.UpdatedAt,
				}},
			)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, &ConcurrentUpdateError{Key: reserve.BoxId}
			}
		}

		if _, err := redemptions.InsertOne(sessCtx, outcome.Redemption); err != nil {
			if isMongoDuplicateKey(err) {
				return nil, &ConcurrentUpdateError{Key: request.RedemptionId}
			}
			return nil, err
		}
		if err := db.insertEvents(sessCtx, append([]*model.EventDocument{outcome.Event}, events...)); err != nil {
			return nil, err
		}
		return &outcome.Redemption, nil
	}

	result, err := db.txWithRetries(ctx, transactionWork)
	if err != nil {
		return nil, err
	}
	return result.(*model.RedemptionDocument), nil
}

func (db *Database) FindRedemption(ctx context.Context, redemptionId string) (*model.RedemptionDocument, error) {
	var redemption model.RedemptionDocument
	err := db.collection(model.RedemptionCollection).FindOne(ctx, bson.M{"_id": redemptionId}).Decode(&redemption)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     redemptionId,
				Message: "redemption not found",
			}
		}
		return nil, err
	}
	return &redemption, nil
}
