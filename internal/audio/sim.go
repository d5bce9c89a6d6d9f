package audio

import (
	"sync"
	"time"

	"github.com/tessro/euphony/internal/errors"
)

// SimOptions configures a SimBackend.
type SimOptions struct {
	// BlockAutoplay refuses Play until the first user gesture.
	BlockAutoplay bool
	// DropEnded suppresses natural end events so only the watchdog ends tracks.
	DropEnded bool
	// Now and AfterFunc replace the wall clock.
	Now       func() time.Time
	AfterFunc AfterFunc
}

// SimBackend produces software streams whose clock follows wall time. It
// stands in for a real audio device in the CLI and dashboard.
type SimBackend struct {
	mu       sync.Mutex
	opts     SimOptions
	unlocked bool
	opened   int
}

// NewSimBackend creates a simulated backend.
func NewSimBackend(opts SimOptions) *SimBackend {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	return &SimBackend{opts: opts}
}

// Open returns a stopped stream for ref.
func (b *SimBackend) Open(ref ResourceRef, h Handlers) (Stream, error) {
	b.mu.Lock()
	b.opened++
	b.mu.Unlock()
	return &simStream{backend: b, ref: ref, h: h, volume: 1}, nil
}

// NotifyGesture lifts the autoplay block.
func (b *SimBackend) NotifyGesture(InputKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unlocked = true
}

// Opened returns how many streams have been opened.
func (b *SimBackend) Opened() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

func (b *SimBackend) blocked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts.BlockAutoplay && !b.unlocked
}

type simStream struct {
	mu      sync.Mutex
	backend *SimBackend
	ref     ResourceRef
	h       Handlers

	playing   bool
	closed    bool
	offset    time.Duration
	startedAt time.Time
	volume    float64
	endTimer  Timer
}

func (s *simStream) Play() error {
	if s.backend.blocked() {
		return errors.ErrPlaybackBlocked
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.playing {
		return nil
	}
	s.playing = true
	s.startedAt = s.backend.opts.Now()
	s.scheduleEndLocked()
	return nil
}

func (s *simStream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	s.offset = s.elapsedLocked()
	s.playing = false
	s.cancelEndLocked()
}

func (s *simStream) Seek(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = time.Duration(max(seconds, 0)) * time.Second
	if s.playing {
		s.startedAt = s.backend.opts.Now()
		s.scheduleEndLocked()
	}
}

func (s *simStream) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = level
}

func (s *simStream) Position() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := int(s.elapsedLocked() / time.Second)
	if s.ref.Duration > 0 && pos > s.ref.Duration {
		pos = s.ref.Duration
	}
	return pos, true
}

func (s *simStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.playing = false
	s.cancelEndLocked()
	return nil
}

func (s *simStream) elapsedLocked() time.Duration {
	if !s.playing {
		return s.offset
	}
	return s.offset + s.backend.opts.Now().Sub(s.startedAt)
}

func (s *simStream) scheduleEndLocked() {
	s.cancelEndLocked()
	if s.backend.opts.DropEnded || s.ref.Duration <= 0 {
		return
	}
	remaining := time.Duration(s.ref.Duration)*time.Second - s.offset
	if remaining < 0 {
		remaining = 0
	}
	s.endTimer = s.backend.opts.AfterFunc(remaining, s.finish)
}

func (s *simStream) cancelEndLocked() {
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
}

func (s *simStream) finish() {
	s.mu.Lock()
	if s.closed || !s.playing {
		s.mu.Unlock()
		return
	}
	s.offset = time.Duration(s.ref.Duration) * time.Second
	s.playing = false
	s.endTimer = nil
	onEnded := s.h.OnEnded
	s.mu.Unlock()

	if onEnded != nil {
		onEnded()
	}
}
