package audit

import "sync"

// Bus fans out written audit Records to in-process subscribers, e.g. an
// OTel counter or a diagnostic tail command. It carries no persistence of
// its own — persistence is Logger's job.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan *Record]struct{}
}

// NewBus creates a new audit event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan *Record]struct{})}
}

// Subscribe registers a new listener and returns a receive-only channel.
// The caller must call Unsubscribe when done.
func (b *Bus) Subscribe() <-chan *Record {
	ch := make(chan *Record, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(ch <-chan *Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.subs {
		if c == ch {
			delete(b.subs, c)
			close(c)
			return
		}
	}
}

// Publish sends rec to all subscribers without blocking. Slow consumers
// that can't keep up miss events rather than stalling the audit writer.
func (b *Bus) Publish(rec *Record) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- rec:
		default:
		}
	}
}
