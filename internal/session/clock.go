package session

import (
	"time"

	"github.com/tessro/euphony/internal/core"
)

// startClockLocked starts the progress clock for the current play-through.
func (s *Session) startClockLocked() {
	s.stopClockLocked()
	if s.tick <= 0 {
		return
	}

	stop := make(chan struct{})
	s.clockStop = stop
	gen := s.gen
	interval := s.tick

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.tickOnce(gen) {
					return
				}
			}
		}
	}()
}

func (s *Session) stopClockLocked() {
	if s.clockStop != nil {
		close(s.clockStop)
		s.clockStop = nil
	}
}

// tickOnce advances progress by one step for play-through gen. Progress
// comes from the driver's stream when it can report it. It returns false
// once the clock should stop.
func (s *Session) tickOnce(gen uint64) bool {
	s.mu.Lock()
	if gen != s.gen || s.status != core.StatusPlaying || s.endHandled {
		s.mu.Unlock()
		return false
	}

	if pos, ok := s.driver.Position(); ok {
		s.progress = pos
	} else {
		s.progress++
	}
	s.progress = min(max(s.progress, 0), s.duration)
	done := s.progress >= s.duration
	s.mu.Unlock()

	if done {
		s.finishTrack(func() bool { return s.gen == gen }, "clock")
		return false
	}
	return true
}
