package core

// Status is the playback session state.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PlaybackState is a snapshot of the playback session.
type PlaybackState struct {
	Song      *Song   `json:"song"`
	Status    Status  `json:"status"`
	IsPlaying bool    `json:"is_playing"`
	Progress  int     `json:"progress"`
	Duration  int     `json:"duration"`
	Shuffle   bool    `json:"shuffle"`
	Repeat    bool    `json:"repeat"`
	Volume    float64 `json:"volume"`
	// Blocked is set when a song is selected but autoplay was refused.
	Blocked bool `json:"blocked"`
}

// HasSong returns true if a song is selected.
func (s PlaybackState) HasSong() bool {
	return s.Song != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s PlaybackState) ProgressPercent() float64 {
	if s.Song == nil || s.Duration == 0 {
		return 0
	}
	return float64(s.Progress) / float64(s.Duration) * 100
}
