package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/tui/styles"
)

// Playlists displays the user's playlists
type Playlists struct {
	selected int
}

// NewPlaylists creates a new Playlists component
func NewPlaylists() *Playlists {
	return &Playlists{}
}

// SelectNext selects the next playlist
func (p *Playlists) SelectNext(n int) {
	if p.selected < n-1 {
		p.selected++
	}
}

// SelectPrev selects the previous playlist
func (p *Playlists) SelectPrev() {
	if p.selected > 0 {
		p.selected--
	}
}

// Selected returns the selected playlist index
func (p *Playlists) Selected() int {
	return p.selected
}

// Render renders the playlists panel
func (p *Playlists) Render(playlists []core.Playlist, likedCount, width, height int, focused bool) string {
	title := styles.PanelTitle("Library", focused)

	liked := styles.Liked.Render("♥") + fmt.Sprintf(" Liked Songs %s", styles.Dim.Render(fmt.Sprintf("(%d)", likedCount)))

	var content string
	if len(playlists) == 0 {
		content = styles.Muted.Render("No playlists yet")
	} else {
		content = p.renderPlaylists(playlists, width-4, height-6, focused)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		liked,
		content,
	))
}

func (p *Playlists) renderPlaylists(playlists []core.Playlist, width, maxLines int, focused bool) string {
	p.selected = min(max(p.selected, 0), len(playlists)-1)

	lines := make([]string, 0, len(playlists))
	for i, pl := range playlists {
		selector := "  "
		name := styles.Truncate(pl.Name, width-10)
		if focused && i == p.selected {
			selector = "▸ "
			name = styles.Highlight.Render(name)
		}

		lines = append(lines, fmt.Sprintf("%s%s %s", selector, name, styles.Dim.Render(fmt.Sprintf("(%d)", len(pl.Songs)))))
		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
