package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/basisledger/iou-ledger-service/internal/config"
)

type Database struct {
	DbName string
	Client *mongo.Client
	cfg    config.DbConfig

	txClient      DBTransactionClient
	maxTxAttempts int
}

var _ DBClient = (*Database)(nil)

type DbResultMap[T any] struct {
	Data            []T    `json:"data"`
	PaginationToken string `json:"paginationToken"`
}

func New(ctx context.Context, cfg config.DbConfig, maxTxAttempts int) (*Database, error) {
	clientOps := options.Client().ApplyURI(cfg.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return nil, err
	}

	return &Database{
		DbName:        cfg.DbName,
		Client:        client,
		cfg:           cfg,
		txClient:      &dbTransactionClient{client},
		maxTxAttempts: maxTxAttempts,
	}, nil
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, nil)
}

func (db *Database) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

func (db *Database) collection(name string) *mongo.Collection {
	return db.Client.Database(db.DbName).Collection(name)
}

func (db *Database) txWithRetries(
	ctx context.Context, txnFunc func(sessCtx mongo.SessionContext) (interface{}, error),
) (interface{}, error) {
	return TxWithRetries(ctx, db.txClient, db.maxTxAttempts, txnFunc)
}

// ToResultMapWithPaginationToken builds the result map with pagination token.
// A token is only returned if the result length is equal to the fetch limit,
// otherwise the pagination token will be an empty string.
func ToResultMapWithPaginationToken[T any](
	limit int64, result []T, paginationKeyBuilder func(T) (string, error),
) (*DbResultMap[T], error) {
	if len(result) > 0 && len(result) == int(limit) {
		paginationToken, err := paginationKeyBuilder(result[len(result)-1])
		if err != nil {
			return nil, err
		}
		return &DbResultMap[T]{
			Data:            result,
			PaginationToken: paginationToken,
		}, nil
	}

	return &DbResultMap[T]{
		Data:            result,
		PaginationToken: "",
	}, nil
}
