package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

type IssuerStatusPublic struct {
	IssuerPkHex            string  `json:"issuer_pubkey"`
	OutstandingDebt        uint64  `json:"outstanding_debt"`
	TotalCollateral        uint64  `json:"total_collateral"`
	TotalDebt              uint64  `json:"total_debt"`
	AvailableCollateral    uint64  `json:"available_collateral"`
	CollateralizationRatio float64 `json:"collateralization_ratio"`
	NoteCount              uint64  `json:"note_count"`
	ReserveCount           int     `json:"reserve_count"`
}

// IssuerStatus summarises what an issuer owes against what backs it.
// The ratio is available collateral over outstanding notes, 0 when nothing
// is outstanding.
func (s *Services) IssuerStatus(ctx context.Context, issuerPkHex string) (*IssuerStatusPublic, *types.Error) {
	issuerPk, err := parsePubKey("issuer_pubkey", issuerPkHex)
	if err != nil {
		return nil, err
	}
	return s.issuerStatus(ctx, hexKey(issuerPk))
}

func (s *Services) issuerStatus(ctx context.Context, issuer string) (*IssuerStatusPublic, *types.Error) {
	outstanding, noteCount, dbErr := s.DbClient.SumOutstandingByIssuer(ctx, issuer)
	if dbErr != nil {
		log.Ctx(ctx).Error().Err(dbErr).Msg("failed to sum outstanding notes")
		return nil, types.NewInternalServiceError(dbErr)
	}
	reserves, err := s.reservesOf(ctx, issuer)
	if err != nil {
		return nil, err
	}

	status := &IssuerStatusPublic{
		IssuerPkHex:         issuer,
		OutstandingDebt:     outstanding,
		AvailableCollateral: db.AvailableCollateral(reserves),
		NoteCount:           noteCount,
		ReserveCount:        len(reserves),
	}
	for i := range reserves {
		status.TotalCollateral = db.AddSaturating(status.TotalCollateral, reserves[i].CollateralAmount)
		status.TotalDebt = db.AddSaturating(status.TotalDebt, reserves[i].TotalDebt)
	}
	if outstanding > 0 {
		status.CollateralizationRatio = float64(status.AvailableCollateral) / float64(outstanding)
	}
	return status, nil
}
