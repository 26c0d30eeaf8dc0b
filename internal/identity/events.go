package identity

import "sync"

// Event names a provider-driven auth transition.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventUserUpdated    Event = "USER_UPDATED"
)

// Handler receives auth events. The session is nil for SIGNED_OUT.
type Handler func(Event, *Session)

type broadcaster struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

func newBroadcaster() *broadcaster {
	return &broadcaster{handlers: make(map[int]Handler)}
}

// subscribe registers fn and returns its cancel func. Cancelling twice is a
// no-op.
func (b *broadcaster) subscribe(fn Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// emit delivers the event to every registered handler, one at a time. Events
// are dispatched synchronously so handlers observe them in emission order.
func (b *broadcaster) emit(event Event, session *Session) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, fn := range b.handlers {
		handlers = append(handlers, fn)
	}
	b.mu.Unlock()
	for _, fn := range handlers {
		fn(event, session)
	}
}
