package wizard

import (
	"os"

	"github.com/tessro/euphony/internal/core"
	"golang.org/x/term"
)

// Interactive provides interactive fallbacks for commands missing an argument.
type Interactive struct {
	enabled    bool
	searchFunc SearchFunc
	playlists  []core.Playlist
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetSearchFunc sets the search function for the song picker.
func (i *Interactive) SetSearchFunc(fn SearchFunc) {
	i.searchFunc = fn
}

// SetPlaylists sets the choices offered by the playlist picker.
func (i *Interactive) SetPlaylists(playlists []core.Playlist) {
	i.playlists = playlists
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSong launches the song picker if interactive mode is available.
// Returns the selected song, or nil if cancelled or not interactive.
func (i *Interactive) PromptSong() (*core.Song, error) {
	if !i.CanInteract() || i.searchFunc == nil {
		return nil, nil
	}
	return RunSearch(i.searchFunc)
}

// PromptPlaylist launches the playlist picker if interactive mode is available.
// Returns the selected playlist, or nil if cancelled or not interactive.
func (i *Interactive) PromptPlaylist() (*core.Playlist, error) {
	if !i.CanInteract() || len(i.playlists) == 0 {
		return nil, nil
	}
	return RunPlaylistPicker(i.playlists)
}

// NeedsSong returns true if neither a query nor an id was given.
func NeedsSong(args []string, id string) bool {
	return len(args) == 0 && id == ""
}

// NeedsPlaylist returns true if a playlist argument is required but missing.
// A single playlist is picked implicitly.
func NeedsPlaylist(ref string, playlists []core.Playlist) bool {
	return ref == "" && len(playlists) != 1
}
