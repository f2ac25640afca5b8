package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/basisledger/iou-ledger-service/internal/config"
)

const (
	NoteCollection             = "notes"
	ReserveCollection          = "reserves"
	RedemptionCollection       = "redemptions"
	EventCollection            = "events"
	UnprocessableMsgCollection = "unprocessable_messages"
)

type indexKey struct {
	Field string
	Order int
}

type index struct {
	Keys   []indexKey
	Unique bool
}

var collections = map[string][]index{
	NoteCollection: {
		{Keys: []indexKey{{"issuer_pk_hex", 1}, {"issued_at", -1}}},
		{Keys: []indexKey{{"recipient_pk_hex", 1}, {"issued_at", -1}}},
	},
	ReserveCollection: {
		{Keys: []indexKey{{"owner_pk_hex", 1}, {"created_at", 1}}},
	},
	RedemptionCollection: {
		{Keys: []indexKey{{"issuer_pk_hex", 1}, {"recipient_pk_hex", 1}}},
	},
	EventCollection:            {{}},
	UnprocessableMsgCollection: {{}},
}

// Setup creates the mongo collections and indexes used by the service.
func Setup(ctx context.Context, cfg *config.Config) error {
	clientOps := options.Client().ApplyURI(cfg.Db.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx) // nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.Db.DbName)

	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	names, err := database.ListCollectionNames(ctx, bson.M{"name": collectionName})
	if err == nil && len(names) > 0 {
		log.Debug().Msg("Collection already exists: " + collectionName)
		return
	}

	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create collection: " + collectionName)
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Keys) == 0 {
		return
	}

	indexKeys := bson.D{}
	for _, k := range idx.Keys {
		indexKeys = append(indexKeys, bson.E{Key: k.Field, Value: k.Order})
	}

	index := mongo.IndexModel{
		Keys:    indexKeys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
}
