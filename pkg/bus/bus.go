package bus

import (
	"context"
	"sync"
	"time"

	"wordlygate/pkg/logger"
)

const queueWriteTimeout = 2 * time.Second

// EventBus carries normalized inbound events from the delivery layer to the
// conversation router. The buffer absorbs bursts; a full queue drops the
// event after queueWriteTimeout rather than blocking the ingestion path.
type EventBus struct {
	inbound   chan InboundEvent
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewEventBus() *EventBus {
	return &EventBus{
		inbound: make(chan InboundEvent, 100),
	}
}

func (eb *EventBus) Publish(ev InboundEvent) {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		return
	}
	ch := eb.inbound
	eb.mu.RUnlock()

	defer func() {
		if recover() != nil {
			logger.WarnCF("bus", "Publish on closed bus recovered", map[string]interface{}{
				logger.FieldChatID:   ev.ChatID,
				logger.FieldUpdateID: ev.UpdateID,
			})
		}
	}()

	select {
	case ch <- ev:
	case <-time.After(queueWriteTimeout):
		logger.ErrorCF("bus", "Publish timeout (queue full)", map[string]interface{}{
			logger.FieldChatID:   ev.ChatID,
			logger.FieldUpdateID: ev.UpdateID,
		})
	}
}

// Consume blocks until an event is available, the bus is closed, or ctx is
// done. The second return is false once no further events will arrive.
func (eb *EventBus) Consume(ctx context.Context) (InboundEvent, bool) {
	select {
	case ev, ok := <-eb.inbound:
		return ev, ok
	case <-ctx.Done():
		return InboundEvent{}, false
	}
}

func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		eb.mu.Lock()
		eb.closed = true
		close(eb.inbound)
		eb.mu.Unlock()
	})
}
