package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/basisledger/iou-ledger-service/internal/types"
)

type EventDocument struct {
	Id               string          `bson:"_id"` // UUIDv7, sorts by creation time
	EventType        types.EventType `bson:"event_type"`
	Timestamp        int64           `bson:"timestamp"`
	IssuerPkHex      string          `bson:"issuer_pk_hex,omitempty"`
	RecipientPkHex   string          `bson:"recipient_pk_hex,omitempty"`
	Amount           uint64          `bson:"amount,omitempty"`
	ReserveBoxId     string          `bson:"reserve_box_id,omitempty"`
	CollateralAmount uint64          `bson:"collateral_amount,omitempty"`
	RedemptionId     string          `bson:"redemption_id,omitempty"`
	CommitmentRoot   string          `bson:"commitment_root,omitempty"`
	NoteCount        uint64          `bson:"note_count,omitempty"`
	Ratio            float64         `bson:"ratio,omitempty"`
}

type EventPagination struct {
	Id string `json:"id"`
}

func BuildEventPaginationToken(d EventDocument) (string, error) {
	return GetPaginationToken(EventPagination{Id: d.Id})
}

// NewEventDocument stamps a new event with a time ordered id.
func NewEventDocument(eventType types.EventType) (*EventDocument, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &EventDocument{
		Id:        id.String(),
		EventType: eventType,
		Timestamp: time.Now().Unix(),
	}, nil
}
