package leveldb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func (d *Database) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	_, err = d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		key := unprocessablePrefix + receipt + ":" + id.String()
		return nil, putDocument(tr, key, model.NewUnprocessableMessageDocument(messageBody, receipt))
	})
	return err
}

func (d *Database) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	iter := d.ldb.NewIterator(util.BytesPrefix([]byte(unprocessablePrefix)), nil)
	defer iter.Release()

	var messages []model.UnprocessableMessageDocument
	for iter.Next() {
		var msg model.UnprocessableMessageDocument
		if err := unmarshal(iter.Value(), &msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, iter.Error()
}

func (d *Database) DeleteUnprocessableMessage(ctx context.Context, receipt interface{}) error {
	prefix := unprocessablePrefix + fmt.Sprint(receipt) + ":"
	_, err := d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		var keys [][]byte
		iter := tr.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		for iter.Next() {
			keys = append(keys, append([]byte(nil), iter.Key()...))
		}
		iterErr := iter.Error()
		iter.Release()
		if iterErr != nil {
			return nil, iterErr
		}
		for _, key := range keys {
			if err := tr.Delete(key, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
