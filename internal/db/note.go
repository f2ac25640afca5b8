package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func (db *Database) SaveNote(ctx context.Context, note *model.NoteDocument, events ...*model.EventDocument) error {
	event, err := NewNoteCreatedEvent(note)
	if err != nil {
		return err
	}

	transactionWork := func(sessCtx mongo.SessionContext) (interface{}, error) {
		_, err := db.collection(model.NoteCollection).InsertOne(sessCtx, note)
		if err != nil {
			if isMongoDuplicateKey(err) {
				// Return the custom error type so that we can return 4xx errors to client
				return nil, &DuplicateKeyError{
					Key:     note.Id,
					Message: "note already exists for issuer and recipient",
				}
			}
			return nil, err
		}
		return nil, db.insertEvents(sessCtx, append([]*model.EventDocument{event}, events...))
	}

	_, err = db.txWithRetries(ctx, transactionWork)
	return err
}

func (db *Database) FindNote(ctx context.Context, issuerPkHex, recipientPkHex string) (*model.NoteDocument, error) {
	id := model.NoteId(issuerPkHex, recipientPkHex)
	var note model.NoteDocument
	err := db.collection(model.NoteCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "note not found",
			}
		}
		return nil, err
	}
	return &note, nil
}

func (db *Database) FindNotesByIssuer(
	ctx context.Context, issuerPkHex string, paginationToken string,
) (*DbResultMap[model.NoteDocument], error) {
	return db.findNotesByParty(ctx, "issuer_pk_hex", issuerPkHex, paginationToken)
}

func (db *Database) FindNotesByRecipient(
	ctx context.Context, recipientPkHex string, paginationToken string,
) (*DbResultMap[model.NoteDocument], error) {
	return db.findNotesByParty(ctx, "recipient_pk_hex", recipientPkHex, paginationToken)
}

func (db *Database) findNotesByParty(
	ctx context.Context, field, pkHex, paginationToken string,
) (*DbResultMap[model.NoteDocument], error) {
	filter := bson.M{field: pkHex}
	opts := options.Find().
		SetSort(bson.D{{Key: "issued_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(db.cfg.MaxPaginationLimit)

	// Decode the pagination token first if it exist
	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.NotePagination](paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		filter = bson.M{
			field: pkHex,
			"$or": []bson.M{
				{"issued_at": bson.M{"$lt": decodedToken.IssuedAt}},
				{"issued_at": decodedToken.IssuedAt, "_id": bson.M{"$gt": decodedToken.Id}},
			},
		}
	}

	cursor, err := db.collection(model.NoteCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []model.NoteDocument
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}

	return ToResultMapWithPaginationToken(db.cfg.MaxPaginationLimit, notes, model.BuildNotePaginationToken)
}

func (db *Database) FindAllNotes(ctx context.Context) ([]model.NoteDocument, error) {
	cursor, err := db.collection(model.NoteCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notes := []model.NoteDocument{}
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (db *Database) SumOutstandingByIssuer(ctx context.Context, issuerPkHex string) (uint64, uint64, error) {
	opts := options.Find().SetProjection(bson.M{"remaining_amount": 1})
	cursor, err := db.collection(model.NoteCollection).Find(ctx, bson.M{"issuer_pk_hex": issuerPkHex}, opts)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var outstanding, count uint64
	for cursor.Next(ctx) {
		var note model.NoteDocument
		if err := cursor.Decode(&note); err != nil {
			return 0, 0, err
		}
		outstanding = AddSaturating(outstanding, note.RemainingAmount)
		count++
	}
	if err := cursor.Err(); err != nil {
		return 0, 0, err
	}
	return outstanding, count, nil
}

func isMongoDuplicateKey(err error) bool {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, e := range writeErr.WriteErrors {
			if mongo.IsDuplicateKeyError(e) {
				return true
			}
		}
	}
	return mongo.IsDuplicateKeyError(err)
}
