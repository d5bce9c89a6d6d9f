package core

import "strings"

// Song is an immutable catalog entry. The JSON field names are the persisted form.
type Song struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ReleaseYear string `json:"releaseYear"`
	Genre       string `json:"genre"`
	Language    string `json:"language"`
	Duration    int    `json:"duration"`
	ImageURL    string `json:"imageUrl,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
}

// DefaultDuration is the length in seconds assumed for songs without one.
const DefaultDuration = 180

// EffectiveDuration returns the song's duration, or DefaultDuration when unset.
func (s Song) EffectiveDuration() int {
	if s.Duration <= 0 {
		return DefaultDuration
	}
	return s.Duration
}

// Title returns "Name - Artist" for display.
func (s Song) Title() string {
	if s.Artist == "" {
		return s.Name
	}
	return s.Name + " - " + s.Artist
}

// IndexOf returns the position of the song with the given id, or -1.
func IndexOf(songs []Song, id string) int {
	for i := range songs {
		if songs[i].ID == id {
			return i
		}
	}
	return -1
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// RandFunc returns a uniformly distributed int in [0, n). n is always > 0.
type RandFunc func(n int) int
