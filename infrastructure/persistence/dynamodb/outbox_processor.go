package dynamodb

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teamcal-backend/application/ports"
)

// OutboxProcessor drains pending outbox rows in the background and
// publishes them downstream, so calendar writes never wait on the bus
type OutboxProcessor struct {
	store     ports.DomainEventStore
	publisher ports.EventPublisher
	logger    *zap.Logger

	batchSize          int
	processingInterval time.Duration

	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	store ports.DomainEventStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *OutboxProcessor {
	return &OutboxProcessor{
		store:              store,
		publisher:          publisher,
		logger:             logger,
		batchSize:          50,
		processingInterval: 5 * time.Second,
		stopChan:           make(chan struct{}),
		stoppedChan:        make(chan struct{}),
	}
}

// Start begins the background processing of outbox events
func (op *OutboxProcessor) Start(ctx context.Context) {
	op.logger.Info("Starting outbox processor",
		zap.Int("batchSize", op.batchSize),
		zap.Duration("interval", op.processingInterval),
	)

	go op.processLoop(ctx)
}

// Stop gracefully stops the outbox processor
func (op *OutboxProcessor) Stop() {
	op.logger.Info("Stopping outbox processor")
	close(op.stopChan)
	<-op.stoppedChan
	op.logger.Info("Outbox processor stopped")
}

func (op *OutboxProcessor) processLoop(ctx context.Context) {
	defer close(op.stoppedChan)

	ticker := time.NewTicker(op.processingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			op.logger.Info("Context cancelled, stopping outbox processor")
			return
		case <-op.stopChan:
			return
		case <-ticker.C:
			if _, err := op.processBatch(ctx); err != nil {
				op.logger.Error("Error processing outbox batch", zap.Error(err))
			}
		}
	}
}

// Drain publishes pending rows until the backlog is empty or maxRounds
// batches have run. Scheduled relay invocations call this instead of the
// background loop.
func (op *OutboxProcessor) Drain(ctx context.Context, maxRounds int) error {
	for i := 0; i < maxRounds; i++ {
		n, err := op.processBatch(ctx)
		if err != nil {
			return err
		}
		if n < op.batchSize {
			return nil
		}
	}
	return nil
}

// processBatch publishes one batch of pending events and reports how many
// rows it picked up. Individual failures are recorded against their rows
// and do not stop the batch.
func (op *OutboxProcessor) processBatch(ctx context.Context) (int, error) {
	pending, err := op.store.GetPendingEvents(ctx, op.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending events: %w", err)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	successCount := 0
	failureCount := 0

	for _, stored := range pending {
		if err := op.processEvent(ctx, stored); err != nil {
			op.logger.Warn("Failed to publish stored event",
				zap.String("eventID", stored.EventID),
				zap.String("eventType", stored.EventType),
				zap.Error(err),
			)
			failureCount++
		} else {
			successCount++
		}
	}

	op.logger.Debug("Completed outbox batch",
		zap.Int("successCount", successCount),
		zap.Int("failureCount", failureCount),
	)

	return len(pending), nil
}

func (op *OutboxProcessor) processEvent(ctx context.Context, stored ports.StoredEvent) error {
	event, err := decodeStoredEvent(stored.EventType, stored.Payload)
	if err != nil {
		// A payload that cannot be decoded will never publish, so burn
		// an attempt each round until it parks as failed.
		if markErr := op.store.MarkFailed(ctx, stored, fmt.Sprintf("decode: %v", err)); markErr != nil {
			return markErr
		}
		return err
	}

	if err := op.publisher.Publish(ctx, event); err != nil {
		if markErr := op.store.MarkFailed(ctx, stored, fmt.Sprintf("publish: %v", err)); markErr != nil {
			return markErr
		}
		return err
	}

	return op.store.MarkPublished(ctx, stored)
}
