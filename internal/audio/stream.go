// Package audio owns the single playable resource behind a playback session.
package audio

import "fmt"

// ResourceRef identifies a playable resource.
type ResourceRef struct {
	URL string `json:"url"`
	// Duration is the expected length in seconds, used for the watchdog.
	Duration int `json:"duration"`
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s (%ds)", r.URL, r.Duration)
}

// InputKind is the kind of user gesture that may unlock blocked playback.
type InputKind int

const (
	InputPointer InputKind = iota
	InputKey
	InputTouch
)

func (k InputKind) String() string {
	switch k {
	case InputPointer:
		return "pointer"
	case InputKey:
		return "key"
	case InputTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// Handlers receive a stream's asynchronous notifications.
type Handlers struct {
	OnEnded func()
	OnError func(err error)
}

// Stream is one loaded resource. Implementations must not invoke Handlers
// synchronously from within these methods.
type Stream interface {
	// Play starts or resumes playback. It returns errors.ErrPlaybackBlocked
	// when the environment refuses to start audio without a user gesture.
	Play() error
	Pause()
	Seek(seconds int)
	SetVolume(level float64)
	// Position reports the playback clock when the resource has one.
	Position() (seconds int, ok bool)
	Close() error
}

// Backend opens streams.
type Backend interface {
	Open(ref ResourceRef, h Handlers) (Stream, error)
}

// GestureAware backends are told about user gestures before a blocked
// stream is retried.
type GestureAware interface {
	NotifyGesture(kind InputKind)
}
