package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/tail"
	"github.com/tessro/euphony/internal/tui/styles"
)

// NowPlaying displays the current song
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state core.PlaybackState, liked bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasSong() {
		content = styles.Muted.Render("Nothing selected. Press / to search or n to start.")
	} else {
		content = n.renderSong(state, liked, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderSong(state core.PlaybackState, liked bool, width int) string {
	song := state.Song

	icon := styles.StatusIcon(state.IsPlaying, state.Blocked)
	heart := " "
	if liked {
		heart = styles.Liked.Render("♥")
	}
	name := styles.Title.Width(max(width-6, 10)).Render(styles.Truncate(song.Name, width-6))

	artist := styles.Subtitle.Render(styles.Truncate(song.Artist, width-2))
	details := styles.Dim.Render(styles.Truncate(fmt.Sprintf("%s · %s · %s", song.Album, song.Genre, song.ReleaseYear), width-2))

	progressWidth := max(width-14, 10)
	bar := styles.ProgressBar(state.ProgressPercent(), progressWidth)
	progress := fmt.Sprintf("%s %s %s", tail.FormatDuration(state.Progress), bar, tail.FormatDuration(state.Duration))

	status := ""
	if state.Blocked {
		status = styles.Paused.Render("Press any key to start audio")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+heart+" "+name,
		"    "+artist,
		"    "+details,
		"",
		progress,
		"",
		n.renderModes(state),
		status,
	)
}

func (n *NowPlaying) renderModes(state core.PlaybackState) string {
	return fmt.Sprintf("%s  %s  %s",
		styles.Toggle("shuffle", state.Shuffle),
		styles.Toggle("repeat", state.Repeat),
		styles.Muted.Render(fmt.Sprintf("🔊 %d%%", int(state.Volume*100+0.5))),
	)
}
