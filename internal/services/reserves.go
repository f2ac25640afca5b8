package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

type ReservePublic struct {
	BoxId               string `json:"box_id"`
	OwnerPkHex          string `json:"owner_pubkey"`
	CollateralAmount    uint64 `json:"collateral_amount"`
	TotalDebt           uint64 `json:"total_debt"`
	AvailableCollateral uint64 `json:"available_collateral"`
}

func fromReserveDocument(d *model.ReserveDocument) ReservePublic {
	return ReservePublic{
		BoxId:               d.BoxId,
		OwnerPkHex:          d.OwnerPkHex,
		CollateralAmount:    d.CollateralAmount,
		TotalDebt:           d.TotalDebt,
		AvailableCollateral: d.Available(),
	}
}

// ListReserves returns the reserves of an owner in the order custody first reported them.
func (s *Services) ListReserves(ctx context.Context, ownerPkHex string) ([]ReservePublic, *types.Error) {
	docs, err := s.reservesOf(ctx, ownerPkHex)
	if err != nil {
		return nil, err
	}
	reserves := make([]ReservePublic, 0, len(docs))
	for i := range docs {
		reserves = append(reserves, fromReserveDocument(&docs[i]))
	}
	return reserves, nil
}

// AvailableCollateral is the collateral of an owner not yet backing debt.
func (s *Services) AvailableCollateral(ctx context.Context, ownerPkHex string) (uint64, *types.Error) {
	docs, err := s.reservesOf(ctx, ownerPkHex)
	if err != nil {
		return 0, err
	}
	return db.AvailableCollateral(docs), nil
}

func (s *Services) reservesOf(ctx context.Context, ownerPkHex string) ([]model.ReserveDocument, *types.Error) {
	ownerPk, err := parsePubKey("issuer_pubkey", ownerPkHex)
	if err != nil {
		return nil, err
	}
	docs, dbErr := s.DbClient.FindReservesByOwner(ctx, hexKey(ownerPk))
	if dbErr != nil {
		log.Ctx(ctx).Error().Err(dbErr).Msg("failed to find reserves")
		return nil, types.NewInternalServiceError(dbErr)
	}
	return docs, nil
}

// ApplyReserveUpdate records the collateral custody reports for a reserve box.
// Reports that would leave the box backing more debt than it holds, or that
// move it to a different owner, are rejected.
func (s *Services) ApplyReserveUpdate(
	ctx context.Context, boxId, ownerPkHex string, collateralAmount uint64,
) (*ReservePublic, *types.Error) {
	if boxId == "" {
		return nil, types.NewFieldError(http.StatusBadRequest, types.ValidationError, "box_id", "box id is required")
	}
	ownerPk, err := parsePubKey("owner_pubkey", ownerPkHex)
	if err != nil {
		return nil, err
	}
	if collateralAmount > MaxAmount {
		return nil, types.NewFieldError(
			http.StatusBadRequest, types.MalformedAmount, "collateral_amount", "collateral amount is too large",
		)
	}

	reserve, dbErr := s.DbClient.SaveReserveUpdate(ctx, boxId, hexKey(ownerPk), collateralAmount)
	if dbErr != nil {
		switch {
		case db.IsInvalidReserveUpdateError(dbErr):
			log.Ctx(ctx).Warn().Err(dbErr).Str("boxId", boxId).Msg("rejected reserve update")
			return nil, types.NewError(http.StatusBadRequest, types.ValidationError, dbErr)
		case db.IsConflictError(dbErr):
			log.Ctx(ctx).Warn().Err(dbErr).Str("boxId", boxId).Msg("reserve update conflicted with a concurrent write")
			return nil, types.NewError(http.StatusConflict, types.Conflict, dbErr)
		}
		log.Ctx(ctx).Error().Err(dbErr).Str("boxId", boxId).Msg("failed to save reserve update")
		return nil, types.NewInternalServiceError(dbErr)
	}
	s.checkCollateralAlert(ctx, reserve.OwnerPkHex)
	public := fromReserveDocument(reserve)
	return &public, nil
}

// SpendReserve drops a reserve box that left custody. Boxes that still back
// debt are rejected. An unknown box is ignored so replayed reports converge.
func (s *Services) SpendReserve(ctx context.Context, boxId, ownerPkHex string) *types.Error {
	if boxId == "" {
		return types.NewFieldError(http.StatusBadRequest, types.ValidationError, "box_id", "box id is required")
	}
	ownerPk, err := parsePubKey("owner_pubkey", ownerPkHex)
	if err != nil {
		return err
	}
	owner := hexKey(ownerPk)

	reserve, dbErr := s.DbClient.SpendReserve(ctx, boxId, owner)
	if dbErr != nil {
		switch {
		case db.IsNotFoundError(dbErr):
			log.Ctx(ctx).Info().Str("boxId", boxId).Msg("spent reserve is not tracked, ignoring")
			return nil
		case db.IsInvalidReserveUpdateError(dbErr):
			log.Ctx(ctx).Warn().Err(dbErr).Str("boxId", boxId).Msg("rejected reserve spend")
			return types.NewError(http.StatusBadRequest, types.ValidationError, dbErr)
		case db.IsConflictError(dbErr):
			log.Ctx(ctx).Warn().Err(dbErr).Str("boxId", boxId).Msg("reserve spend conflicted with a concurrent write")
			return types.NewError(http.StatusConflict, types.Conflict, dbErr)
		}
		log.Ctx(ctx).Error().Err(dbErr).Str("boxId", boxId).Msg("failed to spend reserve")
		return types.NewInternalServiceError(dbErr)
	}
	log.Ctx(ctx).Info().Str("boxId", boxId).Uint64("collateral", reserve.CollateralAmount).Msg("reserve spent")
	s.checkCollateralAlert(ctx, owner)
	return nil
}
