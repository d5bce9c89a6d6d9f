package session

import (
	"time"

	"github.com/tessro/euphony/internal/core"
)

// EventType represents the type of session event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackRestart
	EventBlocked
	EventPause
	EventResume
	EventSeek
	EventVolumeChange
	EventModeChange
	EventError
	EventStop
	EventRecommendations
)

func (t EventType) String() string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackRestart:
		return "track_restart"
	case EventBlocked:
		return "blocked"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventSeek:
		return "seek"
	case EventVolumeChange:
		return "volume_change"
	case EventModeChange:
		return "mode_change"
	case EventError:
		return "error"
	case EventStop:
		return "stop"
	case EventRecommendations:
		return "recommendations"
	default:
		return "unknown"
	}
}

// Event is a session state change. State is the snapshot taken right
// after the change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	State     core.PlaybackState
	Err       error
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every later event and returns a function that
// removes it. Events are delivered synchronously on the goroutine that
// caused them, never while the session lock is held.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(t EventType, state core.PlaybackState, err error) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	ev := Event{Type: t, Timestamp: time.Now(), State: state, Err: err}
	for _, sub := range subs {
		sub.fn(ev)
	}
}
