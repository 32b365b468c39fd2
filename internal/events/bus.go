package events

import (
	"sync"
	"time"
)

type Handler func(event Event)

// Bus is a synchronous in-process fan-out. Handlers run on the publishing
// goroutine, so a publish is observable before the publisher's caller
// returns.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type. Handlers must not
// publish back to the bus from within themselves.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventType] = append(b.subs[eventType], h)
}

func (b *Bus) Publish(eventType string, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[eventType]))
	copy(handlers, b.subs[eventType])
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
