package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func (db *Database) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	_, err := db.collection(model.UnprocessableMsgCollection).InsertOne(
		ctx, model.NewUnprocessableMessageDocument(messageBody, receipt),
	)
	return err
}

func (db *Database) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	cursor, err := db.collection(model.UnprocessableMsgCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var unprocessableMessages []model.UnprocessableMessageDocument
	if err = cursor.All(ctx, &unprocessableMessages); err != nil {
		return nil, err
	}

	return unprocessableMessages, nil
}

func (db *Database) DeleteUnprocessableMessage(ctx context.Context, receipt interface{}) error {
	_, err := db.collection(model.UnprocessableMsgCollection).DeleteOne(ctx, bson.M{"receipt": receipt})
	return err
}
