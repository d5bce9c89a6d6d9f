package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/tui/styles"
)

// History displays recently played songs, newest first.
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(recent []core.Song, width, height int, focused bool) string {
	title := styles.PanelTitle("Recently Played", focused)

	var content string
	if len(recent) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(recent, width-4, height-4)
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

func (h *History) renderHistory(recent []core.Song, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	// icon + " " + " — " + genre column
	const overhead = 6

	for i, song := range recent {
		if i >= maxLines {
			break
		}

		genre := styles.Truncate(song.Genre, 10)
		name, artist := fit(song.Name, song.Artist, width-overhead-len([]rune(genre)))
		info := fmt.Sprintf("%s — %s", name, artist)
		padding := max(width-2-len([]rune(info))-len([]rune(genre)), 1)

		icon := "✓"
		if i == 0 {
			icon = "♪"
		}

		lines = append(lines, fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render(icon),
			info,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(genre)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
