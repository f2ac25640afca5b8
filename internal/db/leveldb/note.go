package leveldb

import (
	"context"
	"strings"

	goleveldb "github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

func noteKey(noteId string) string {
	return notePrefix + noteId
}

func noteIndexKey(prefix, pkHex string, issuedAt uint64, noteId string) string {
	return prefix + pkHex + ":" + descendingUint(issuedAt) + ":" + noteId
}

func (d *Database) SaveNote(ctx context.Context, note *model.NoteDocument, events ...*model.EventDocument) error {
	event, err := db.NewNoteCreatedEvent(note)
	if err != nil {
		return err
	}

	_, err = d.update(ctx, func(tr *goleveldb.Transaction) (interface{}, error) {
		existing, err := getDocument[model.NoteDocument](tr, noteKey(note.Id), nil)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &db.DuplicateKeyError{
				Key:     note.Id,
				Message: "note already exists for issuer and recipient",
			}
		}
		if err := putDocument(tr, noteKey(note.Id), note); err != nil {
			return nil, err
		}
		byIssuer := noteIndexKey(noteByIssuerPrefix, note.IssuerPkHex, note.IssuedAt, note.Id)
		if err := tr.Put([]byte(byIssuer), []byte(note.Id), nil); err != nil {
			return nil, err
		}
		byRecipient := noteIndexKey(noteByRecipientPrefix, note.RecipientPkHex, note.IssuedAt, note.Id)
		if err := tr.Put([]byte(byRecipient), []byte(note.Id), nil); err != nil {
			return nil, err
		}
		return nil, putEvents(tr, append([]*model.EventDocument{event}, events...))
	})
	return err
}

func (d *Database) FindNote(ctx context.Context, issuerPkHex, recipientPkHex string) (*model.NoteDocument, error) {
	id := model.NoteId(issuerPkHex, recipientPkHex)
	return getDocument[model.NoteDocument](d.ldb, noteKey(id), &db.NotFoundError{
		Key:     id,
		Message: "note not found",
	})
}

func (d *Database) FindNotesByIssuer(
	ctx context.Context, issuerPkHex string, paginationToken string,
) (*db.DbResultMap[model.NoteDocument], error) {
	return d.findNotesByParty(noteByIssuerPrefix, issuerPkHex, paginationToken)
}

func (d *Database) FindNotesByRecipient(
	ctx context.Context, recipientPkHex string, paginationToken string,
) (*db.DbResultMap[model.NoteDocument], error) {
	return d.findNotesByParty(noteByRecipientPrefix, recipientPkHex, paginationToken)
}

func (d *Database) findNotesByParty(
	prefix, pkHex, paginationToken string,
) (*db.DbResultMap[model.NoteDocument], error) {
	partyPrefix := prefix + pkHex + ":"
	slice := util.BytesPrefix([]byte(partyPrefix))

	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.NotePagination](paginationToken)
		if err != nil || !strings.Contains(decodedToken.Id, ":") {
			return nil, &db.InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		// start right after the last returned entry
		slice.Start = append([]byte(noteIndexKey(prefix, pkHex, decodedToken.IssuedAt, decodedToken.Id)), 0)
	}

	snapshot, err := d.ldb.GetSnapshot()
	if err != nil {
		return nil, err
	}
	defer snapshot.Release()

	iter := snapshot.NewIterator(slice, nil)
	defer iter.Release()

	notes := []model.NoteDocument{}
	for iter.Next() && int64(len(notes)) < d.maxPaginationLimit {
		note, err := getDocument[model.NoteDocument](snapshot, noteKey(string(iter.Value())), &db.NotFoundError{
			Key:     string(iter.Value()),
			Message: "note index points at a missing note",
		})
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return db.ToResultMapWithPaginationToken(d.maxPaginationLimit, notes, model.BuildNotePaginationToken)
}

func (d *Database) FindAllNotes(ctx context.Context) ([]model.NoteDocument, error) {
	iter := d.ldb.NewIterator(util.BytesPrefix([]byte(notePrefix)), nil)
	defer iter.Release()

	notes := []model.NoteDocument{}
	for iter.Next() {
		var note model.NoteDocument
		if err := unmarshal(iter.Value(), &note); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, iter.Error()
}

func (d *Database) SumOutstandingByIssuer(ctx context.Context, issuerPkHex string) (uint64, uint64, error) {
	snapshot, err := d.ldb.GetSnapshot()
	if err != nil {
		return 0, 0, err
	}
	defer snapshot.Release()

	iter := snapshot.NewIterator(util.BytesPrefix([]byte(noteByIssuerPrefix+issuerPkHex+":")), nil)
	defer iter.Release()

	var outstanding, count uint64
	for iter.Next() {
		note, err := getDocument[model.NoteDocument](snapshot, noteKey(string(iter.Value())), nil)
		if err != nil {
			return 0, 0, err
		}
		if note == nil {
			continue
		}
		outstanding = db.AddSaturating(outstanding, note.RemainingAmount)
		count++
	}
	return outstanding, count, iter.Error()
}
