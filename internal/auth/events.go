package auth

import (
	"sync"
	"time"
)

type EventKind string

const (
	SignedUp  EventKind = "signed_up"
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// SessionEvent reports a change in a user's session. Session is the zero
// value for SignedOut.
type SessionEvent struct {
	Kind    EventKind
	UserID  string
	Session Session
	At      time.Time
}

const subscriberBuffer = 16

// broadcaster fans session events out to subscribers. A subscriber whose
// buffer is full misses the event.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan SessionEvent
	nextID int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan SessionEvent)}
}

func (b *broadcaster) subscribe() (<-chan SessionEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan SessionEvent, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (b *broadcaster) publish(ev SessionEvent) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}
