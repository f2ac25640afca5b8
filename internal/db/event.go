package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func (db *Database) insertEvents(ctx context.Context, events []*model.EventDocument) error {
	docs := make([]interface{}, 0, len(events))
	for _, event := range events {
		docs = append(docs, event)
	}
	_, err := db.collection(model.EventCollection).InsertMany(ctx, docs)
	return err
}

func (db *Database) SaveEvent(ctx context.Context, event *model.EventDocument) error {
	_, err := db.collection(model.EventCollection).InsertOne(ctx, event)
	return err
}

// FindEvents returns the ledger events, newest first.
func (db *Database) FindEvents(ctx context.Context, paginationToken string) (*DbResultMap[model.EventDocument], error) {
	filter := bson.M{}
	opts := options.Find().SetSort(bson.M{"_id": -1}).SetLimit(db.cfg.MaxPaginationLimit)

	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.EventPagination](paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		filter = bson.M{"_id": bson.M{"$lt": decodedToken.Id}}
	}

	cursor, err := db.collection(model.EventCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.EventDocument
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return ToResultMapWithPaginationToken(db.cfg.MaxPaginationLimit, events, model.BuildEventPaginationToken)
}
