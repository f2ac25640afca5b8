package leveldb

import (
	"context"
	"time"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func reserveKey(boxId string) string {
	return reservePrefix + boxId
}

func reserveByOwnerKey(ownerPkHex string, createdAt int64, boxId string) string {
	return reserveByOwnerPrefix + ownerPkHex + ":" + orderedUint(uint64(createdAt)) + ":" + boxId
}

func (d *Database) SaveReserveUpdate(
	ctx context.Context, boxId, ownerPkHex string, collateralAmount uint64,
) (*model.ReserveDocument, error) {
	result, err := d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		existing, err := getDocument[model.ReserveDocument](tr, reserveKey(boxId), nil)
		if err != nil {
			return nil, err
		}
		reserve, event, err := db.ApplyReserveUpdate(existing, boxId, ownerPkHex, collateralAmount, time.Now())
		if err != nil {
			return nil, err
		}
		if err := putDocument(tr, reserveKey(boxId), reserve); err != nil {
			return nil, err
		}
		if existing == nil {
			ownerKey := reserveByOwnerKey(ownerPkHex, reserve.CreatedAt, boxId)
			if err := tr.Put([]byte(ownerKey), []byte(boxId), nil); err != nil {
				return nil, err
			}
		}
		if err := putDocument(tr, eventKey(event.Id), event); err != nil {
			return nil, err
		}
		return reserve, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ReserveDocument), nil
}

func (d *Database) SpendReserve(ctx context.Context, boxId, ownerPkHex string) (*model.ReserveDocument, error) {
	result, err := d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		existing, err := getDocument[model.ReserveDocument](tr, reserveKey(boxId), nil)
		if err != nil {
			return nil, err
		}
		event, err := db.ApplyReserveSpend(existing, boxId, ownerPkHex)
		if err != nil {
			return nil, err
		}
		if err := tr.Delete([]byte(reserveKey(boxId)), nil); err != nil {
			return nil, err
		}
		ownerKey := reserveByOwnerKey(existing.OwnerPkHex, existing.CreatedAt, boxId)
		if err := tr.Delete([]byte(ownerKey), nil); err != nil {
			return nil, err
		}
		if err := putDocument(tr, eventKey(event.Id), event); err != nil {
			return nil, err
		}
		return existing, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.ReserveDocument), nil
}

func (d *Database) FindReservesByOwner(ctx context.Context, ownerPkHex string) ([]model.ReserveDocument, error) {
	snapshot, err := d.ldb.GetSnapshot()
	if err != nil {
		return nil, err
	}
	defer snapshot.Release()
	return findReservesByOwner(snapshot, ownerPkHex)
}

func findReservesByOwner(r reader, ownerPkHex string) ([]model.ReserveDocument, error) {
	iter := r.NewIterator(util.BytesPrefix([]byte(reserveByOwnerPrefix+ownerPkHex+":")), nil)
	defer iter.Release()

	reserves := []model.ReserveDocument{}
	for iter.Next() {
		boxId := string(iter.Value())
		reserve, err := getDocument[model.ReserveDocument](r, reserveKey(boxId), &db.NotFoundError{
			Key:     boxId,
			Message: "reserve index points at a missing reserve",
		})
		if err != nil {
			return nil, err
		}
		reserves = append(reserves, *reserve)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	// keys already sort by creation time, this settles equal timestamps by box id
	db.SortReservesByInsertion(reserves)
	return reserves, nil
}
