package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/tui/styles"
)

// SongList is a scrollable, selectable list of songs.
type SongList struct {
	title    string
	empty    string
	offset   int
	selected int
}

// NewSongList creates a list panel with the given title and empty text.
func NewSongList(title, empty string) *SongList {
	return &SongList{title: title, empty: empty}
}

// SelectNext moves the selection down.
func (l *SongList) SelectNext(n int) {
	if l.selected < n-1 {
		l.selected++
	}
}

// SelectPrev moves the selection up.
func (l *SongList) SelectPrev() {
	if l.selected > 0 {
		l.selected--
	}
}

// Selected returns the selected index
func (l *SongList) Selected() int {
	return l.selected
}

// Render renders the list. current marks the playing song's id.
func (l *SongList) Render(songs []core.Song, current string, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("%s (%d)", l.title, len(songs)), focused)

	var content string
	if len(songs) == 0 {
		content = styles.Muted.Render(l.empty)
	} else {
		content = l.renderSongs(songs, current, width-4, height-4, focused)
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

func (l *SongList) renderSongs(songs []core.Song, current string, width, maxLines int, focused bool) string {
	l.selected = min(max(l.selected, 0), len(songs)-1)

	// Leave room for the "more" indicator.
	visible := max(maxLines-1, 1)
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.selected >= l.offset+visible {
		l.offset = l.selected - visible + 1
	}

	start := l.offset
	end := min(start+visible, len(songs))
	lines := make([]string, 0, end-start+1)

	// "XX. " + marker + " — "
	const overhead = 9

	for i := start; i < end; i++ {
		song := songs[i]
		num := fmt.Sprintf("%2d.", i+1)
		name, artist := fit(song.Name, song.Artist, width-overhead)

		var line string
		switch {
		case song.ID == current:
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, name, artist))
		case focused && i == l.selected:
			line = styles.Selected.Render(fmt.Sprintf("%s ▸ %s — %s", num, name, artist))
		default:
			line = fmt.Sprintf("%s   %s — %s", styles.Dim.Render(num), name, styles.Muted.Render(artist))
		}
		lines = append(lines, line)
	}

	if end < len(songs) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(songs)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit truncates name and artist to share available columns, giving the
// artist at least a third.
func fit(name, artist string, available int) (string, string) {
	nameLen := len([]rune(name))
	artistLen := len([]rune(artist))
	if nameLen+artistLen <= available {
		return name, artist
	}

	minArtist := min(max(available/3, 10), max(available-10, 0))
	artistSpace := min(artistLen, minArtist)
	return styles.Truncate(name, available-artistSpace), styles.Truncate(artist, artistSpace)
}
