package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/euphony/internal/session"
)

// Formatter formats session events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. An invalid template is
// reported by ParseTemplate; here it is ignored.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if t, err := ParseTemplate(tmpl); err == nil {
			f.template = t
		}
	}
}

// ParseTemplate parses a format template. Empty input yields nil.
func ParseTemplate(tmpl string) (*template.Template, error) {
	if tmpl == "" {
		return nil, nil
	}
	t, err := template.New("format").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse format template: %w", err)
	}
	return t, nil
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e session.Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e session.Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e session.Event) string {
	data := templateData{
		Type:      e.Type.String(),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Progress:  e.State.Progress,
		Duration:  e.State.Duration,
		Volume:    int(e.State.Volume*100 + 0.5),
	}
	if song := e.State.Song; song != nil {
		data.ID = song.ID
		data.Title = song.Name
		data.Artist = song.Artist
		data.Album = song.Album
		data.Genre = song.Genre
	}
	if e.Err != nil {
		data.Error = e.Err.Error()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	ID        string
	Title     string
	Artist    string
	Album     string
	Genre     string
	Progress  int
	Duration  int
	Volume    int
	Error     string
}

func (f *Formatter) eventDescription(e session.Event) string {
	song := e.State.Song

	switch e.Type {
	case session.EventTrackChange:
		if song != nil {
			return "Now playing: " + song.Title()
		}
		return "Track changed"

	case session.EventTrackComplete:
		if song != nil {
			return "Finished: " + song.Title()
		}
		return "Track completed"

	case session.EventTrackRestart:
		if song != nil {
			return "Restarted: " + song.Title()
		}
		return "Track restarted"

	case session.EventBlocked:
		return "Waiting for a key press to start audio"

	case session.EventPause:
		return "Paused"

	case session.EventResume:
		return "Resumed"

	case session.EventSeek:
		return "Seek: " + FormatDuration(e.State.Progress)

	case session.EventVolumeChange:
		return fmt.Sprintf("Volume: %d%%", int(e.State.Volume*100+0.5))

	case session.EventModeChange:
		return fmt.Sprintf("Shuffle: %s, Repeat: %s", onOff(e.State.Shuffle), onOff(e.State.Repeat))

	case session.EventError:
		if e.Err != nil {
			return "Error: " + e.Err.Error()
		}
		return "Playback error"

	case session.EventStop:
		return "Stopped"

	case session.EventRecommendations:
		return "Recommendations updated"

	default:
		return "Unknown event"
	}
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func eventEmoji(t session.EventType) string {
	switch t {
	case session.EventTrackChange:
		return "🎵"
	case session.EventTrackComplete:
		return "✅"
	case session.EventTrackRestart:
		return "🔁"
	case session.EventBlocked:
		return "⌨️"
	case session.EventPause:
		return "⏸️"
	case session.EventResume:
		return "▶️"
	case session.EventSeek:
		return "⏩"
	case session.EventVolumeChange:
		return "🔊"
	case session.EventModeChange:
		return "🔀"
	case session.EventError:
		return "⚠️"
	case session.EventStop:
		return "⏹️"
	case session.EventRecommendations:
		return "✨"
	default:
		return "❓"
	}
}
