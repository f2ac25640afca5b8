package services

import (
	"context"

	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

type EventPublic struct {
	Id               string `json:"id"`
	EventType        string `json:"event_type"`
	Timestamp        string `json:"timestamp"`
	IssuerPkHex      string `json:"issuer_pubkey,omitempty"`
	RecipientPkHex   string `json:"recipient_pubkey,omitempty"`
	Amount           uint64 `json:"amount,omitempty"`
	ReserveBoxId     string `json:"box_id,omitempty"`
	CollateralAmount uint64 `json:"collateral_amount,omitempty"`
	RedemptionId     string `json:"redemption_id,omitempty"`
	CommitmentRoot   string `json:"commitment_root,omitempty"`
	NoteCount        uint64 `json:"note_count,omitempty"`

	// set on COLLATERAL_ALERT only
	CollateralizationRatio *float64 `json:"collateralization_ratio,omitempty"`
}

func fromEventDocument(d *model.EventDocument) *EventPublic {
	public := &EventPublic{
		Id:               d.Id,
		EventType:        d.EventType.ToString(),
		Timestamp:        utils.UnixSecondsToIsoFormat(uint64(d.Timestamp)),
		IssuerPkHex:      d.IssuerPkHex,
		RecipientPkHex:   d.RecipientPkHex,
		Amount:           d.Amount,
		ReserveBoxId:     d.ReserveBoxId,
		CollateralAmount: d.CollateralAmount,
		RedemptionId:     d.RedemptionId,
		CommitmentRoot:   d.CommitmentRoot,
		NoteCount:        d.NoteCount,
	}
	if d.EventType == types.CollateralAlert {
		ratio := d.Ratio
		public.CollateralizationRatio = &ratio
	}
	return public
}

// ListEvents returns the ledger's change feed, newest first.
func (s *Services) ListEvents(ctx context.Context, paginationKey string) ([]*EventPublic, string, *types.Error) {
	result, err := s.DbClient.FindEvents(ctx, paginationKey)
	if err != nil {
		return nil, "", paginationError(ctx, err)
	}
	events := make([]*EventPublic, 0, len(result.Data))
	for i := range result.Data {
		events = append(events, fromEventDocument(&result.Data[i]))
	}
	return events, result.PaginationToken, nil
}
