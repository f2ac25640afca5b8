package leveldb

import (
	"context"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func eventKey(eventId string) string {
	return eventPrefix + eventId
}

func putEvents(tr *goleveldb.Transaction, events []*model.EventDocument) error {
	for _, event := range events {
		if err := putDocument(tr, eventKey(event.Id), event); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) SaveEvent(ctx context.Context, event *model.EventDocument) error {
	_, err := d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		return nil, putDocument(tr, eventKey(event.Id), event)
	})
	return err
}

// FindEvents returns the ledger events, newest first.
func (d *Database) FindEvents(ctx context.Context, paginationToken string) (*db.DbResultMap[model.EventDocument], error) {
	slice := util.BytesPrefix([]byte(eventPrefix))
	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.EventPagination](paginationToken)
		if err != nil || decodedToken.Id == "" {
			return nil, &db.InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		// Limit is exclusive, iteration resumes below the last returned event
		slice.Limit = []byte(eventKey(decodedToken.Id))
	}

	iter := d.ldb.NewIterator(slice, nil)
	defer iter.Release()

	events := []model.EventDocument{}
	for ok := iter.Last(); ok && int64(len(events)) < d.maxPaginationLimit; ok = iter.Prev() {
		var event model.EventDocument
		if err := unmarshal(iter.Value(), &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return db.ToResultMapWithPaginationToken(d.maxPaginationLimit, events, model.BuildEventPaginationToken)
}
