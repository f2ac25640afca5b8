package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func (db *Database) SaveReserveUpdate(
	ctx context.Context, boxId, ownerPkHex string, collateralAmount uint64,
) (*model.ReserveDocument, error) {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		reserves := db.collection(model.ReserveCollection)

		var existing *model.ReserveDocument
		var current model.ReserveDocument
		err := reserves.FindOne(sessCtx, bson.M{"_id": boxId}).Decode(&current)
		switch {
		case err == nil:
			existing = &current
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, err
		}

		reserve, event, err := ApplyReserveUpdate(existing, boxId, ownerPkHex, collateralAmount, time.Now())
		if err != nil {
			return nil, err
		}

		if existing == nil {
			if _, err := reserves.InsertOne(sessCtx, reserve); err != nil {
				if isMongoDuplicateKey(err) {
					return nil, &ConcurrentUpdateError{Key: boxId}
				}
				return nil, err
			}
		} else {
			// total_debt is part of the filter so a concurrent redemption cannot
			// push debt above the new collateral.
			res, err := reserves.UpdateOne(sessCtx,
				bson.M{"_id": boxId, "total_debt": existing.TotalDebt},
				bson.M{"$set": bson.M{
					"collateral_amount": reserve.CollateralAmount,
					"updated_at":        reserve.UpdatedAt,
				}},
			)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, &ConcurrentUpdateError{Key: boxId}
			}
		}

		if _, err := db.collection(model.EventCollection).InsertOne(sessCtx, event); err != nil {
			return nil, err
		}
		return reserve, nil
	}

	result, err := db.txWithRetries(ctx, transactionWork)
	if err != nil {
		return nil, err
	}
	return result.(*model.ReserveDocument), nil
}

func (db *Database) SpendReserve(ctx context.Context, boxId, ownerPkHex string) (*model.ReserveDocument, error) {
	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		reserves := db.collection(model.ReserveCollection)

		var existing *model.ReserveDocument
		var current model.ReserveDocument
		err := reserves.FindOne(sessCtx, bson.M{"_id": boxId}).Decode(&current)
		switch {
		case err == nil:
			existing = &current
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, err
		}

		event, err := ApplyReserveSpend(existing, boxId, ownerPkHex)
		if err != nil {
			return nil, err
		}
		// a redemption that charged the box since the read fails the filter
		res, err := reserves.DeleteOne(sessCtx, bson.M{"_id": boxId, "total_debt": existing.TotalDebt})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, &ConcurrentUpdateError{Key: boxId}
		}
		if _, err := db.collection(model.EventCollection).InsertOne(sessCtx, event); err != nil {
			return nil, err
		}
		return existing, nil
	}

	result, err := db.txWithRetries(ctx, transactionWork)
	if err != nil {
		return nil, err
	}
	return result.(*model.ReserveDocument), nil
}

func (db *Database) FindReservesByOwner(ctx context.Context, ownerPkHex string) ([]model.ReserveDocument, error) {
	return db.findReservesByOwner(ctx, ownerPkHex)
}

func (db *Database) findReservesByOwner(ctx context.Context, ownerPkHex string) ([]model.ReserveDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := db.collection(model.ReserveCollection).Find(ctx, bson.M{"owner_pk_hex": ownerPkHex}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reserves := []model.ReserveDocument{}
	if err = cursor.All(ctx, &reserves); err != nil {
		return nil, err
	}
	return reserves, nil
}
