package tail

import (
	"context"
	"sync"

	"github.com/tessro/euphony/internal/session"
)

// Source is anything that publishes session events. *session.Session
// implements it.
type Source interface {
	Subscribe(fn func(session.Event)) (cancel func())
}

// Watcher turns session callbacks into a channel of events.
type Watcher struct {
	source Source
	skip   map[session.EventType]bool

	mu     sync.Mutex
	events chan session.Event
	cancel func()
	closed bool
	done   chan struct{}
	stop   sync.Once
}

// NewWatcher creates a watcher. Events of the skipped types are not
// delivered.
func NewWatcher(source Source, skip ...session.EventType) *Watcher {
	w := &Watcher{
		source: source,
		skip:   make(map[session.EventType]bool, len(skip)),
		events: make(chan session.Event, 16),
		done:   make(chan struct{}),
	}
	for _, t := range skip {
		w.skip[t] = true
	}
	return w
}

// Events returns the channel of session events. It is closed when Start
// returns.
func (w *Watcher) Events() <-chan session.Event {
	return w.events
}

// Listen subscribes to the source without blocking. Events published
// after Listen returns are buffered on the Events channel. Start calls
// Listen itself when needed.
func (w *Watcher) Listen() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil && !w.closed {
		w.cancel = w.source.Subscribe(w.deliver)
	}
}

// Start forwards events until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.Listen()
	defer func() {
		w.mu.Lock()
		if w.cancel != nil {
			w.cancel()
		}
		w.closed = true
		close(w.events)
		w.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return nil
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stop.Do(func() { close(w.done) })
}

func (w *Watcher) deliver(e session.Event) {
	if w.skip[e.Type] {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- e:
	default:
		// Drop event if channel is full
	}
}
