package scripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/queue"
	"github.com/basisledger/iou-ledger-service/internal/queue/client"
)

type GenericEvent struct {
	EventType client.EventType `json:"event_type"`
}

// ReplayUnprocessableMessages publishes every stored unprocessable message
// back onto its queue and removes it from the store.
func ReplayUnprocessableMessages(ctx context.Context, cfg *config.Config, queues *queue.Queues, db db.DBClient) (err error) {
	// Fetch unprocessable messages
	unprocessableMessages, err := db.FindUnprocessableMessages(ctx)
	if err != nil {
		return errors.New("failed to retrieve unprocessable messages")
	}

	messageCount := len(unprocessableMessages)
	log.Info().Int("count", messageCount).Msg("found unprocessable messages")
	if messageCount == 0 {
		return errors.New("no unprocessable messages to replay")
	}

	for _, msg := range unprocessableMessages {
		var genericEvent GenericEvent
		if err := json.Unmarshal([]byte(msg.MessageBody), &genericEvent); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal event message")
			return errors.New("failed to unmarshal event message")
		}

		if err := processEventMessage(ctx, queues, genericEvent, msg.MessageBody); err != nil {
			log.Error().Err(err).Msg("failed to process message")
			return errors.New("failed to process message")
		}

		// Delete the processed message from the database
		if err := db.DeleteUnprocessableMessage(ctx, msg.Receipt); err != nil {
			return errors.New("failed to delete unprocessable message")
		}
	}

	log.Info().Msg("Reprocessing of unprocessable messages completed.")
	return
}

// processEventMessage routes the event message to its queue by EventType.
func processEventMessage(ctx context.Context, queues *queue.Queues, event GenericEvent, messageBody string) error {
	if !event.EventType.IsValid() {
		return fmt.Errorf("unknown event type: %v", event.EventType)
	}
	return queues.ReserveEventsQueueClient.SendMessage(ctx, messageBody)
}
