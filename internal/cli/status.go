package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/history"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog, library and storage status",
	Long:  `Shows the catalog size, what you have saved, and where it is stored.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusResult struct {
	Songs       int        `json:"songs"`
	CatalogPath string     `json:"catalog_path,omitempty"`
	Storage     string     `json:"storage"`
	Location    string     `json:"location"`
	Liked       int        `json:"liked"`
	Library     int        `json:"library"`
	Playlists   int        `json:"playlists"`
	Recent      int        `json:"recent"`
	History     int        `json:"history"`
	LastPlayed  *core.Song `json:"last_played,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		st := statusResult{
			Songs:       rt.catalog.Len(),
			CatalogPath: cfg.Catalog.Path,
			Storage:     cfg.Storage.Backend,
			Location:    cfg.Storage.Dir,
			Liked:       len(rt.library.Liked()),
			Library:     len(rt.library.Library()),
			Playlists:   len(rt.library.Playlists()),
			Recent:      len(rt.history.RecentlyPlayed()),
			History:     len(rt.history.ListeningHistory()),
		}
		if cfg.Storage.Backend == "redis" {
			st.Location = fmt.Sprintf("%s/%d (%s*)", cfg.Storage.RedisAddr, cfg.Storage.RedisDB, cfg.Storage.RedisPrefix)
		}
		if recent := rt.history.RecentlyPlayed(); len(recent) > 0 {
			st.LastPlayed = &recent[0]
		}

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return printJSON(out, st)
		}

		source := "built-in"
		if st.CatalogPath != "" {
			source = st.CatalogPath + " + built-in"
		}

		t := NewTableWriter(out)
		t.Row("Catalog:", fmt.Sprintf("%d songs (%s)", st.Songs, source))
		t.Row("Storage:", fmt.Sprintf("%s %s", st.Storage, st.Location))
		t.Row("Liked:", fmt.Sprint(st.Liked))
		t.Row("Library:", fmt.Sprint(st.Library))
		t.Row("Playlists:", fmt.Sprint(st.Playlists))
		t.Row("History:", fmt.Sprintf("%d recent, %d of %d for recommendations", st.Recent, st.History, history.HistoryLimit))
		if st.LastPlayed != nil {
			t.Row("Last played:", st.LastPlayed.Title())
		}
		t.Flush()
		return nil
	})
}
