package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/events"
)

const maxPublishAttempts = 3

// outboxRow pairs the stored form with the original event so GetEvents
// can hand back typed events without a decode step. seq breaks timestamp
// ties with insertion order.
type outboxRow struct {
	stored ports.StoredEvent
	event  events.DomainEvent
	seq    uint64
}

// OutboxStore is an in-memory DomainEventStore. Rows move through the
// same pending, published and failed states as the table-backed outbox.
type OutboxStore struct {
	mu      sync.RWMutex
	rows    map[string]*outboxRow // keyed by event ID
	nextSeq uint64
}

// NewOutboxStore creates an empty in-memory outbox
func NewOutboxStore() *OutboxStore {
	return &OutboxStore{rows: make(map[string]*outboxRow)}
}

// SaveEvents appends the domain events as pending outbox rows
func (s *OutboxStore) SaveEvents(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range domainEvents {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		stored := ports.StoredEvent{
			EventID:     uuid.New().String(),
			AggregateID: event.GetAggregateID(),
			EventType:   event.GetEventType(),
			Payload:     payload,
			Timestamp:   event.GetTimestamp(),
			Status:      "pending",
		}
		s.nextSeq++
		s.rows[stored.EventID] = &outboxRow{stored: stored, event: event, seq: s.nextSeq}
	}
	return nil
}

// GetEvents returns the aggregate's events in timestamp order
func (s *OutboxStore) GetEvents(ctx context.Context, aggregateID string) ([]events.DomainEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*outboxRow
	for _, row := range s.rows {
		if row.stored.AggregateID == aggregateID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].stored.Timestamp.Equal(rows[j].stored.Timestamp) {
			return rows[i].stored.Timestamp.Before(rows[j].stored.Timestamp)
		}
		return rows[i].seq < rows[j].seq
	})

	result := make([]events.DomainEvent, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.event)
	}
	return result, nil
}

// GetPendingEvents returns up to limit rows still awaiting publication,
// oldest first
func (s *OutboxStore) GetPendingEvents(ctx context.Context, limit int) ([]ports.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []*outboxRow
	for _, row := range s.rows {
		if row.stored.Status == "pending" {
			pending = append(pending, row)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].seq < pending[j].seq
	})

	result := make([]ports.StoredEvent, 0, len(pending))
	for _, row := range pending {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, row.stored)
	}
	return result, nil
}

// MarkPublished flips the row to published
func (s *OutboxStore) MarkPublished(ctx context.Context, event ports.StoredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[event.EventID]
	if !ok {
		return nil
	}
	row.stored.Status = "published"
	return nil
}

// MarkFailed records a failed attempt, parking the row after the limit
func (s *OutboxStore) MarkFailed(ctx context.Context, event ports.StoredEvent, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[event.EventID]
	if !ok {
		return nil
	}
	row.stored.Attempts++
	if row.stored.Attempts >= maxPublishAttempts {
		row.stored.Status = "failed"
	}
	return nil
}

// DeleteEvents removes every row belonging to the aggregate
func (s *OutboxStore) DeleteEvents(ctx context.Context, aggregateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.stored.AggregateID == aggregateID {
			delete(s.rows, id)
		}
	}
	return nil
}

var _ ports.DomainEventStore = (*OutboxStore)(nil)
