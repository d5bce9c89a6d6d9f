package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/tessro/euphony/internal/core"
)

// PlaylistOptions builds picker options labelled with each playlist's size.
func PlaylistOptions(playlists []core.Playlist) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(playlists))
	for _, p := range playlists {
		label := fmt.Sprintf("%s (%d songs)", p.Name, len(p.Songs))
		if len(p.Songs) == 1 {
			label = fmt.Sprintf("%s (1 song)", p.Name)
		}
		options = append(options, huh.NewOption(label, p.ID))
	}
	return options
}

// RunPlaylistPicker shows a select form and returns the chosen playlist.
func RunPlaylistPicker(playlists []core.Playlist) (*core.Playlist, error) {
	var selectedID string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select playlist").
				Description("The song will be added to this playlist").
				Options(PlaylistOptions(playlists)...).
				Value(&selectedID),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	for i := range playlists {
		if playlists[i].ID == selectedID {
			return &playlists[i], nil
		}
	}
	return nil, nil
}
