package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var _ EventEmitter = (*Bus)(nil)

// Bus routes each event to the handlers subscribed to its type. Dispatch is
// synchronous: EmitEvent returns once every subscriber has run.
type Bus struct {
	mu     sync.RWMutex
	routes map[string][]EventHandler
	logger *slog.Logger
}

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		routes: make(map[string][]EventHandler),
		logger: logger.With(slog.String("component", "event_bus")),
	}
}

// Subscribe registers handler for events of eventType.
func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	if handler == nil {
		panic("handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[eventType] = append(b.routes[eventType], handler)
}

// EmitEvent runs every subscriber of event.Type in registration order. All
// subscribers run even when one fails; the failures are joined.
func (b *Bus) EmitEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.routes[event.Type]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("no subscribers for event", slog.String("event_type", event.Type))
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := h.HandleEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		b.logger.Error("event handlers failed",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type),
			slog.Int("failures", len(errs)))
	}
	return errors.Join(errs...)
}
