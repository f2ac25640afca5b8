package leveldb

import (
	"context"
	"time"

	goleveldb "github.com/syndtr/goleveldb/leveldb"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func redemptionKey(redemptionId string) string {
	return redemptionPrefix + redemptionId
}

// CommitRedemption reads and writes the note, the reserves and the redemption
// log inside one transaction. Only one transaction is open at a time, so the
// checks cannot be invalidated before the commit.
func (d *Database) CommitRedemption(
	ctx context.Context, request *model.RedemptionRequestDocument, events ...*model.EventDocument,
) (*model.RedemptionDocument, error) {
	result, err := d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		committed, err := getDocument[model.RedemptionDocument](tr, redemptionKey(request.RedemptionId), nil)
		if err != nil {
			return nil, err
		}
		if committed != nil {
			return committed, nil
		}

		noteId := model.NoteId(request.IssuerPkHex, request.RecipientPkHex)
		note, err := getDocument[model.NoteDocument](tr, noteKey(noteId), &db.NotFoundError{
			Key:     noteId,
			Message: "note not found",
		})
		if err != nil {
			return nil, err
		}

		reserves, err := findReservesByOwner(tr, request.IssuerPkHex)
		if err != nil {
			return nil, err
		}

		outcome, err := db.ApplyRedemption(note, reserves, request, time.Now())
		if err != nil {
			return nil, err
		}

		if err := putDocument(tr, noteKey(noteId), &outcome.Note); err != nil {
			return nil, err
		}
		for i := range outcome.Reserves {
			reserve := &outcome.Reserves[i]
			if err := putDocument(tr, reserveKey(reserve.BoxId), reserve); err != nil {
				return nil, err
			}
		}
		if err := putDocument(tr, redemptionKey(request.RedemptionId), &outcome.Redemption); err != nil {
			return nil, err
		}
		if err := putEvents(tr, append([]*model.EventDocument{outcome.Event}, events...)); err != nil {
			return nil, err
		}
		return &outcome.Redemption, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.RedemptionDocument), nil
}

func (d *Database) FindRedemption(ctx context.Context, redemptionId string) (*model.RedemptionDocument, error) {
	return getDocument[model.RedemptionDocument](d.ldb, redemptionKey(redemptionId), &db.NotFoundError{
		Key:     redemptionId,
		Message: "redemption not found",
	})
}
