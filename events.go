package vcedit

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// EventKind is the closed set of events a View emits.
type EventKind int

const (
	EventDelta           EventKind = iota // A delta was applied to the model
	EventError                            // Validation or tree resolution failed
	EventRender                           // A tree flush completed
	EventSelectionChange                  // The caret was placed in the tree
)

func (k EventKind) String() string {
	switch k {
	case EventDelta:
		return "delta"
	case EventError:
		return "error"
	case EventRender:
		return "render"
	case EventSelectionChange:
		return "selectionchange"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is delivered to listeners. Delta is set for EventDelta, Err for
// EventError, and Selection with its carets for EventSelectionChange.
type Event struct {
	Kind      EventKind
	Delta     Delta
	Err       error
	Selection Selection
	Start     Caret
	End       Caret
}

// Listener receives events. Listeners run synchronously on the emitting
// goroutine.
type Listener func(Event)

// Subscription identifies a registered listener.
type Subscription struct {
	ID   uuid.UUID
	Kind EventKind
}

type subscriber struct {
	sub Subscription
	fn  Listener
}

// Bus delivers events to listeners in registration order.
type Bus struct {
	subs []subscriber
	log  *slog.Logger
}

// NewBus creates a bus that reports listener panics to log.
func NewBus(log *slog.Logger) *Bus {
	if log == nil {
		log = discardLogger()
	}
	return &Bus{log: log}
}

// On registers fn for events of the given kind.
func (b *Bus) On(kind EventKind, fn Listener) Subscription {
	sub := Subscription{ID: uuid.New(), Kind: kind}
	b.subs = append(b.subs, subscriber{sub: sub, fn: fn})
	return sub
}

// Off removes a listener. It reports whether the listener was registered.
func (b *Bus) Off(id uuid.UUID) bool {
	i := slices.IndexFunc(b.subs, func(s subscriber) bool { return s.sub.ID == id })
	if i < 0 {
		return false
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	return true
}

// Emit delivers ev to every listener of its kind. A panicking listener is
// logged and reported as an EventError; the remaining listeners still run.
func (b *Bus) Emit(ev Event) {
	// listeners may subscribe or unsubscribe while we deliver
	subs := slices.Clone(b.subs)
	for _, s := range subs {
		if s.sub.Kind != ev.Kind {
			continue
		}
		b.deliver(s, ev)
	}
}

func (b *Bus) deliver(s subscriber, ev Event) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("%w: %s listener %s: %v", ErrListenerPanic, ev.Kind, s.sub.ID, r)
		b.log.Error("listener panicked", "event", ev.Kind.String(), "subscription", s.sub.ID.String(), "panic", r)
		if ev.Kind != EventError {
			b.Emit(Event{Kind: EventError, Err: err})
		}
	}()
	s.fn(ev)
}
