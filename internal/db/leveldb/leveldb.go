// Package leveldb stores the ledger in an embedded LevelDB database. Every
// mutation runs in a LevelDB transaction, which also serialises writers.
package leveldb

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	ldb_errors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/db"
)

// key prefixes
const (
	notePrefix            = "n:"
	noteByIssuerPrefix    = "ni:"
	noteByRecipientPrefix = "nr:"
	reservePrefix         = "r:"
	reserveByOwnerPrefix  = "ro:"
	redemptionPrefix      = "d:"
	eventPrefix           = "e:"
	unprocessablePrefix   = "u:"
)

var _ db.DBClient = (*Database)(nil)

type Database struct {
	ldb                *goleveldb.DB
	maxPaginationLimit int64
}

// New opens the database at cfg.Path, or an in memory database for config.InMemoryDbPath.
func New(cfg config.DbConfig) (*Database, error) {
	var (
		ldb *goleveldb.DB
		err error
	)
	if cfg.Path == config.InMemoryDbPath {
		ldb, err = goleveldb.Open(storage.NewMemStorage(), nil)
	} else {
		ldb, err = goleveldb.OpenFile(cfg.Path, nil)
		if ldb_errors.IsCorrupted(err) {
			ldb, err = goleveldb.RecoverFile(cfg.Path, nil)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb: %w", err)
	}
	return &Database{
		ldb:                ldb,
		maxPaginationLimit: cfg.MaxPaginationLimit,
	}, nil
}

// NewInMemory opens an empty database that lives as long as the process.
func NewInMemory(maxPaginationLimit int64) (*Database, error) {
	return New(config.DbConfig{
		Type:               config.LevelDbType,
		Path:               config.InMemoryDbPath,
		MaxPaginationLimit: maxPaginationLimit,
	})
}

func (d *Database) Ping(ctx context.Context) error {
	_, err := d.ldb.GetProperty("leveldb.num-files-at-level0")
	return err
}

func (d *Database) Close(ctx context.Context) error {
	return d.ldb.Close()
}

// reader is satisfied by both *goleveldb.DB and *goleveldb.Transaction.
type reader interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// update runs fn inside a transaction and commits it if fn succeeds.
func (d *Database) update(ctx context.Context, fn func(tr *goleveldb.Transaction) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr, err := d.ldb.OpenTransaction()
	if err != nil {
		return nil, err
	}
	result, err := fn(tr)
	if err != nil {
		tr.Discard()
		return nil, err
	}
	if err := tr.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

func getDocument[T any](r reader, key string, notFound *db.NotFoundError) (*T, error) {
	value, err := r.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, goleveldb.ErrNotFound) {
			if notFound == nil {
				return nil, nil
			}
			return nil, notFound
		}
		return nil, err
	}
	var doc T
	if err := unmarshal(value, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func unmarshal(value []byte, doc interface{}) error {
	return bson.Unmarshal(value, doc)
}

func putDocument(tr *goleveldb.Transaction, key string, doc interface{}) error {
	value, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return tr.Put([]byte(key), value, nil)
}

// orderedUint renders v so that lexical order matches numeric order.
func orderedUint(v uint64) string {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return hex.EncodeToString(b[:])
}

// descendingUint renders v so that lexical order is the reverse of numeric order.
func descendingUint(v uint64) string {
	return orderedUint(math.MaxUint64 - v)
}
