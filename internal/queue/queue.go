package queue

import (
	"context"
	"fmt"
	"net/http"
	"time"

	queueClient "github.com/babylonchain/staking-queue-client/client"
	queueConfig "github.com/babylonchain/staking-queue-client/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/observability/metrics"
	"github.com/basisledger/iou-ledger-service/internal/queue/client"
	"github.com/basisledger/iou-ledger-service/internal/queue/handlers"
	"github.com/basisledger/iou-ledger-service/internal/services"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

type Queues struct {
	Handlers                 *handlers.QueueHandler
	processingTimeout        time.Duration
	maxRetryAttempts         int32
	reQueueDelayTime         time.Duration
	ReserveEventsQueueClient queueClient.QueueClient
}

func New(cfg *queueConfig.QueueConfig, service *services.Services) *Queues {
	reserveEventsQueueClient, err := queueClient.NewQueueClient(cfg, client.ReserveEventsQueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating ReserveEventsQueueClient")
	}
	return NewWithClient(cfg, service, reserveEventsQueueClient)
}

// NewWithClient wires the queue processing around an already connected client.
func NewWithClient(cfg *queueConfig.QueueConfig, service *services.Services, reserveEventsQueueClient queueClient.QueueClient) *Queues {
	return &Queues{
		Handlers:                 handlers.NewQueueHandler(service),
		processingTimeout:        time.Duration(cfg.QueueProcessingTimeout) * time.Second,
		maxRetryAttempts:         cfg.MsgMaxRetryAttempts,
		reQueueDelayTime:         time.Duration(cfg.ReQueueDelayTime) * time.Second,
		ReserveEventsQueueClient: reserveEventsQueueClient,
	}
}

// Start all message processing
func (q *Queues) StartReceivingMessages() {
	startQueueMessageProcessing(
		q.ReserveEventsQueueClient,
		q.Handlers.ReserveEventHandler, q.Handlers.HandleUnprocessedMessage,
		q.maxRetryAttempts, q.processingTimeout, q.reQueueDelayTime,
	)
	// ...add more queues here
}

// Turn off all message processing
func (q *Queues) StopReceivingMessages() {
	if err := q.ReserveEventsQueueClient.Stop(); err != nil {
		log.Error().Err(err).Str("queueName", q.ReserveEventsQueueClient.GetQueueName()).Msg("error while stopping queue")
	}
}

func startQueueMessageProcessing(
	qc queueClient.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	maxRetryAttempts int32, processingTimeout, reQueueDelay time.Duration,
) {
	messagesChan, err := qc.ReceiveMessages()
	if err != nil {
		log.Fatal().Err(err).Str("queueName", qc.GetQueueName()).Msg("error setting up message channel from queue")
	}

	go func() {
		for message := range messagesChan {
			processMessage(qc, message, handler, unprocessableHandler, maxRetryAttempts, processingTimeout, reQueueDelay)
		}
		log.Info().Str("queueName", qc.GetQueueName()).Msg("stopped receiving messages from queue")
	}()
}

func processMessage(
	qc queueClient.QueueClient, message queueClient.QueueMessage,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	maxRetryAttempts int32, processingTimeout, reQueueDelay time.Duration,
) {
	queueName := qc.GetQueueName()
	logger := log.With().Str("queueName", queueName).Logger()
	// For each message, create a new context with a deadline or timeout
	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background()), processingTimeout)
	defer cancel()
	stopTimer := metrics.StartQueueMessageTimer(queueName)

	if message.GetRetryAttempts() > maxRetryAttempts {
		logger.Error().Str("receipt", message.Receipt).Msg("message exceeded max retry attempts, saving as unprocessable")
		if err := unprocessableHandler(ctx, message.Body, message.Receipt); err != nil {
			logger.Error().Err(err).Msg("error while saving unprocessable message")
			stopTimer(metrics.Error)
			return
		}
		deleteMessage(qc, message.Receipt, logger)
		stopTimer(metrics.Error)
		return
	}

	if handlerErr := handler(ctx, message.Body); handlerErr != nil {
		stopTimer(metrics.Error)
		logger.Error().Err(handlerErr).Int32("retryAttempts", message.GetRetryAttempts()).
			Msg("error while processing message from queue, requeueing")
		reQueue(ctx, qc, message, reQueueDelay, logger)
		return
	}

	deleteMessage(qc, message.Receipt, logger)
	stopTimer(metrics.Success)
}

func reQueue(ctx context.Context, qc queueClient.QueueClient, message queueClient.QueueMessage, delay time.Duration, logger zerolog.Logger) {
	utils.Sleep(delay)
	if err := qc.ReQueueMessage(ctx, message); err != nil {
		logger.Error().Err(err).Msg("error while requeuing message")
	}
}

func deleteMessage(qc queueClient.QueueClient, receipt string, logger zerolog.Logger) {
	if err := qc.DeleteMessage(receipt); err != nil {
		logger.Error().Err(err).Msg("error while deleting message from queue")
	}
}

func (q *Queues) IsConnectionHealthy() error {
	var errorMessages []string

	checkQueue := func(name string, qc queueClient.QueueClient) {
		if err := qc.Ping(); err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("%s is not healthy: %v", name, err))
		}
	}
	checkQueue("ReserveEventsQueueClient", q.ReserveEventsQueueClient)

	if len(errorMessages) > 0 {
		return types.NewErrorWithMsg(
			http.StatusServiceUnavailable, types.InternalServiceError,
			fmt.Sprintf("queue connections unhealthy: %v", errorMessages),
		)
	}
	return nil
}
