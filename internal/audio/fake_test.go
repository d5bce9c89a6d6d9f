package audio

import (
	"sync"
	"time"

	"github.com/tessro/euphony/internal/errors"
)

// manualTimers records scheduled callbacks so tests can fire them.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// active returns timers that have not been stopped.
func (m *manualTimers) active() []*manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*manualTimer
	for _, t := range m.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// fireAll runs every timer ever scheduled, stopped or not, like a timer
// that fired just before Stop was called.
func (m *manualTimers) fireAll() {
	m.mu.Lock()
	timers := append([]*manualTimer(nil), m.timers...)
	m.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

type fakeStream struct {
	ref      ResourceRef
	h        Handlers
	blocked  int
	playErr  error
	plays    int
	pauses   int
	seeks    []int
	volume   float64
	position int
	hasClock bool
	closed   bool
}

func (s *fakeStream) Play() error {
	s.plays++
	if s.blocked > 0 {
		s.blocked--
		return errors.ErrPlaybackBlocked
	}
	return s.playErr
}

func (s *fakeStream) Pause()                  { s.pauses++ }
func (s *fakeStream) Seek(seconds int)        { s.seeks = append(s.seeks, seconds); s.position = seconds }
func (s *fakeStream) SetVolume(level float64) { s.volume = level }
func (s *fakeStream) Position() (int, bool)   { return s.position, s.hasClock }
func (s *fakeStream) Close() error            { s.closed = true; return nil }

type fakeBackend struct {
	streams  []*fakeStream
	blockN   int
	openErr  error
	gestures []InputKind
}

func (b *fakeBackend) Open(ref ResourceRef, h Handlers) (Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := &fakeStream{ref: ref, h: h, blocked: b.blockN}
	b.streams = append(b.streams, s)
	return s, nil
}

func (b *fakeBackend) NotifyGesture(kind InputKind) {
	b.gestures = append(b.gestures, kind)
}

func (b *fakeBackend) last() *fakeStream {
	return b.streams[len(b.streams)-1]
}
