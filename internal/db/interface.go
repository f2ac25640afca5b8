package db

import (
	"context"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
)

// DBClient is implemented by every storage engine. Methods return the typed
// errors declared in this package so that the service layer can map them.
type DBClient interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// SaveNote inserts a new note together with its creation event and any
	// further events given. It returns a DuplicateKeyError if a note already
	// exists for the pair.
	SaveNote(ctx context.Context, note *model.NoteDocument, events ...*model.EventDocument) error
	FindNote(ctx context.Context, issuerPkHex, recipientPkHex string) (*model.NoteDocument, error)
	FindNotesByIssuer(
		ctx context.Context, issuerPkHex string, paginationToken string,
	) (*DbResultMap[model.NoteDocument], error)
	FindNotesByRecipient(
		ctx context.Context, recipientPkHex string, paginationToken string,
	) (*DbResultMap[model.NoteDocument], error)
	// FindAllNotes returns every note, in no particular order.
	FindAllNotes(ctx context.Context) ([]model.NoteDocument, error)
	// SumOutstandingByIssuer returns the total remaining amount and count of an issuer's notes.
	SumOutstandingByIssuer(ctx context.Context, issuerPkHex string) (uint64, uint64, error)

	// SaveReserveUpdate applies a custody report of the absolute collateral held by a box.
	SaveReserveUpdate(
		ctx context.Context, boxId, ownerPkHex string, collateralAmount uint64,
	) (*model.ReserveDocument, error)
	// SpendReserve removes a box that left custody. It returns a NotFoundError
	// for an unknown box and an InvalidReserveUpdateError if the box still
	// backs debt or belongs to another owner.
	SpendReserve(ctx context.Context, boxId, ownerPkHex string) (*model.ReserveDocument, error)
	// FindReservesByOwner returns the owner's reserves in insertion order.
	FindReservesByOwner(ctx context.Context, ownerPkHex string) ([]model.ReserveDocument, error)

	// CommitRedemption re-validates and applies a redemption atomically. If a
	// redemption with the same id was already committed it is returned unchanged
	// and the events are not written.
	CommitRedemption(
		ctx context.Context, request *model.RedemptionRequestDocument, events ...*model.EventDocument,
	) (*model.RedemptionDocument, error)
	FindRedemption(ctx context.Context, redemptionId string) (*model.RedemptionDocument, error)

	SaveEvent(ctx context.Context, event *model.EventDocument) error
	FindEvents(ctx context.Context, paginationToken string) (*DbResultMap[model.EventDocument], error)

	SaveUnprocessableMessage(ctx context.Context, messageBody, receipt string) error
	FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error)
	DeleteUnprocessableMessage(ctx context.Context, receipt interface{}) error
}
