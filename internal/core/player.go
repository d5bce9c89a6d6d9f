package core

import "context"

// Player defines the interface for music playback control.
type Player interface {
	// Playback control
	Play(ctx context.Context, song Song) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, seconds int) error

	// Volume control, level in [0,1]
	SetVolume(ctx context.Context, level float64) error

	// Mode toggles return the new value.
	ToggleShuffle() bool
	ToggleRepeat() bool

	// State queries
	State() PlaybackState
	Recommendations() []Song
}
