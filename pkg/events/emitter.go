// Package events moves change events between the sync service and the listeners that react
// to them, either in process or through Kafka.
package events

import (
	"context"
	"sync"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/kafka"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
)

// Publisher writes a change event to the message bus.
type Publisher interface {
	PublishChangeEvent(ctx context.Context, event models.ChangeEvent) error
}

// Listener reacts to a change event. The websocket hub and replica stores are listeners.
type Listener interface {
	Notify(ctx context.Context, event models.ChangeEvent)
}

// Emitter publishes committed changes to Kafka.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// Notify publishes event. The mutation is already committed, so a failed publish is logged
// and left to the replicas' periodic refresh.
func (e *Emitter) Notify(ctx context.Context, event models.ChangeEvent) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.Notify")
	defer span.End()

	if err := e.publisher.PublishChangeEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_id":  event.ID,
			"table":     event.Table,
			"entity_id": event.EntityID,
		}).Error("Failed to emit change event")
	}
}

// Fanout delivers each change event to every registered listener in registration order.
type Fanout struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    ectologger.Logger
}

func NewFanout(logger ectologger.Logger, listeners ...Listener) *Fanout {
	return &Fanout{
		listeners: listeners,
		logger:    logger,
	}
}

func (f *Fanout) Add(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *Fanout) Notify(ctx context.Context, event models.ChangeEvent) {
	f.mu.RLock()
	listeners := append([]Listener(nil), f.listeners...)
	f.mu.RUnlock()

	for _, l := range listeners {
		l.Notify(ctx, event)
	}
}

// Handle is a kafka.MessageHandler that fans consumed events out to the listeners.
func (f *Fanout) Handle(ctx context.Context, event models.ChangeEvent, headers kafka.MessageHeaders) error {
	f.logger.WithContext(ctx).WithFields(map[string]any{
		"event_id":  event.ID,
		"table":     event.Table,
		"operation": event.Operation,
		"client_id": headers.ClientID,
		"trace_id":  headers.TraceID(),
	}).Debug("Received change event")

	f.Notify(ctx, event)
	return nil
}
