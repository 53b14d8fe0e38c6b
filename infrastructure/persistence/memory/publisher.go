package memory

import (
	"context"
	"sync"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/events"
)

// CapturePublisher is an EventPublisher that records what it is asked to
// publish. Tests inspect Published; FailWith forces publish errors.
type CapturePublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
	failWith  error
}

// NewCapturePublisher creates a publisher that accepts everything
func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

// FailWith makes every subsequent publish return err; nil restores success
func (p *CapturePublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

// Publish records a single event
func (p *CapturePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, event)
	return nil
}

// PublishBatch records multiple events
func (p *CapturePublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, batch...)
	return nil
}

// Published returns a copy of everything published so far
func (p *CapturePublisher) Published() []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]events.DomainEvent, len(p.published))
	copy(out, p.published)
	return out
}

var _ ports.EventPublisher = (*CapturePublisher)(nil)
