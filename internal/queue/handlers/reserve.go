package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/queue/client"
	"github.com/basisledger/iou-ledger-service/internal/types"
)

// ReserveEventHandler applies a custody report for a reserve box.
// Reports carry the absolute collateral of the box, so replaying a message
// converges on the same reserve state.
func (h *QueueHandler) ReserveEventHandler(ctx context.Context, messageBody string) *types.Error {
	var event client.ReserveEvent
	err := json.Unmarshal([]byte(messageBody), &event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal the message body into ReserveEvent")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}
	if !event.EventType.IsValid() {
		log.Ctx(ctx).Error().Int("eventType", int(event.EventType)).Msg("Unknown reserve event type")
		return types.NewError(
			http.StatusBadRequest, types.BadRequest,
			fmt.Errorf("unknown reserve event type %d", event.EventType),
		)
	}

	if event.EventType == client.ReserveSpentEventType {
		if spendErr := h.Services.SpendReserve(ctx, event.BoxId, event.OwnerPkHex); spendErr != nil {
			log.Ctx(ctx).Error().Err(spendErr).Str("boxId", event.BoxId).Msg("Failed to apply reserve spent event")
			return spendErr
		}
		return nil
	}

	reserve, updateErr := h.Services.ApplyReserveUpdate(ctx, event.BoxId, event.OwnerPkHex, event.CollateralAmount)
	if updateErr != nil {
		log.Ctx(ctx).Error().Err(updateErr).Str("boxId", event.BoxId).Msg("Failed to apply reserve event")
		return updateErr
	}

	log.Ctx(ctx).Debug().
		Str("boxId", reserve.BoxId).
		Uint64("collateral", reserve.CollateralAmount).
		Uint64("height", event.Height).
		Msg("reserve event applied")
	return nil
}
