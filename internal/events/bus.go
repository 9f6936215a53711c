package events

import (
	"sync"
	"time"
)

// Bus stores recent events, assigns sequence numbers, and fans them out to
// live subscribers. It implements Sink.
type Bus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
	subs      map[int]chan Event
	nextSub   int
}

// NewBus creates a bus that keeps the last maxEvents events.
func NewBus(maxEvents int) *Bus {
	if maxEvents <= 0 {
		maxEvents = 500
	}
	return &Bus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		subs:      make(map[int]chan Event),
	}
}

// Emit publishes e.
func (b *Bus) Emit(e Event) { b.Publish(e) }

// Publish appends one event, assigning sequence and timestamp, and delivers
// it to every subscriber. A subscriber whose buffer is full is dropped and
// its channel closed; it can resubscribe and catch up with Since.
func (b *Bus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			close(ch)
			delete(b.subs, id)
		}
	}
	return event
}

// Since returns retained events with sequence strictly greater than seq.
func (b *Bus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}
	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// Subscribe returns the retained backlog and a channel of every event
// published afterwards. The backlog and channel never overlap or skip.
// Call cancel to stop delivery; it is safe to call more than once.
func (b *Bus) Subscribe(buffer int) (backlog []Event, ch <-chan Event, cancel func()) {
	if buffer <= 0 {
		buffer = 64
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	backlog = append([]Event(nil), b.events...)
	c := make(chan Event, buffer)
	id := b.nextSub
	b.nextSub++
	b.subs[id] = c

	var once sync.Once
	cancel = func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				close(sub)
				delete(b.subs, id)
			}
		})
	}
	return backlog, c, cancel
}
