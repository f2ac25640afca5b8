package services

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/observability/metrics"
)

// checkCollateralAlert records a COLLATERAL_ALERT event when an issuer's
// collateralization ratio falls below the configured threshold. An issuer is
// alerted once per drop and re-armed when the ratio recovers or nothing is
// outstanding.
func (s *Services) checkCollateralAlert(ctx context.Context, issuerPkHex string) {
	threshold := s.cfg.Ledger.CollateralAlertRatio
	if threshold <= 0 {
		return
	}
	status, err := s.issuerStatus(ctx, issuerPkHex)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("issuer", issuerPkHex).Msg("skipping collateral alert check")
		return
	}
	if status.OutstandingDebt == 0 || status.CollateralizationRatio >= threshold {
		s.alerted.Delete(issuerPkHex)
		return
	}
	if s.alerted.Add(issuerPkHex, status.CollateralizationRatio, cache.NoExpiration) != nil {
		return
	}

	event, dbErr := db.NewCollateralAlertEvent(issuerPkHex, status.CollateralizationRatio)
	if dbErr == nil {
		dbErr = s.DbClient.SaveEvent(ctx, event)
	}
	if dbErr != nil {
		s.alerted.Delete(issuerPkHex)
		log.Ctx(ctx).Error().Err(dbErr).Str("issuer", issuerPkHex).Msg("failed to record collateral alert")
		return
	}
	metrics.RecordCollateralAlert()
	log.Ctx(ctx).Warn().Str("issuer", issuerPkHex).
		Float64("ratio", status.CollateralizationRatio).
		Float64("threshold", threshold).
		Msg("issuer collateralization fell below the alert ratio")
}
