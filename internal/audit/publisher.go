package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher queues events and drains them to the store on a background
// worker. Emit never blocks the request path: when the buffer is full the
// event is dropped and counted, never the caller's operation. The audit
// trail here is operational, not compliance-grade.
type Publisher struct {
	store  Store
	logger *slog.Logger
	inbox  chan Event
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		logger: logger,
		inbox:  make(chan Event, 256),
	}
}

// Emit enqueues an event, stamping the time if the caller didn't.
func (p *Publisher) Emit(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return ctx.Err()
		case event := <-p.inbox:
			p.append(event)
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case event := <-p.inbox:
			p.append(event)
		default:
			return
		}
	}
}

func (p *Publisher) append(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.Error("failed to append audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

// Nop discards all events; handy default for tests.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
