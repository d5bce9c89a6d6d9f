package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/euphony/internal/tui"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - current song, progress, modes and volume
  • For You - recommendations from your listening history
  • Library - liked songs and playlists
  • History - recently played songs

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n            Next song
  p            Previous song
  ←/→          Seek 10 seconds
  +/-          Volume up/down
  s            Toggle shuffle
  r            Toggle repeat
  l            Like current song
  Tab          Switch panel

If audio is blocked until you interact, any key starts it.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		refresh := cfg.TUI.RefreshInterval
		if tuiRefresh > 0 {
			refresh = tuiRefresh
		}

		app := &tui.App{
			Session:     rt.startSession(),
			Catalog:     rt.catalog,
			Library:     rt.library,
			History:     rt.history,
			RefreshRate: time.Duration(refresh) * time.Millisecond,
		}
		return tui.Run(app, cfg.TUI.Theme)
	})
}
