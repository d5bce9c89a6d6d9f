package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/recommend"
)

var (
	songsArtist string
	songsMood   string
	songsLimit  int

	recommendSimilar  string
	recommendPersonal bool
	recommendLimit    int

	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Long: `Search song titles, artists, albums and moods.

Examples:
  euphony search "shape of"
  euphony search coldplay --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List catalog songs",
	Long: `List songs in catalog order, optionally filtered by artist or mood.

Examples:
  euphony songs --artist "ed sheeran"
  euphony songs --mood party --limit 10`,
	Args: cobra.NoArgs,
	RunE: runSongs,
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show the newest songs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			return printSongs(cmd.OutOrStdout(), recommend.Trending(rt.catalog.All()), 0)
		})
	},
}

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "Show mood shelves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			cats := recommend.MoodCategories(rt.catalog.All())
			out := cmd.OutOrStdout()
			if JSONOutput() {
				return printJSON(out, cats)
			}
			t := NewTableWriter(out, "MOOD", "SONGS", "TOP PICK")
			for _, c := range cats {
				top := "-"
				if len(c.Songs) > 0 {
					top = TruncateString(c.Songs[0].Title(), 40)
				}
				t.Row(c.Name, fmt.Sprint(len(c.Songs)), top)
			}
			t.Flush()
			return nil
		})
	},
}

var artistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "Show artists with the most songs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			shelves := recommend.ArtistShelves(rt.catalog.All())
			out := cmd.OutOrStdout()
			if JSONOutput() {
				return printJSON(out, shelves)
			}
			t := NewTableWriter(out, "ARTIST", "SONGS", "DESCRIPTION")
			for _, s := range shelves {
				t.Row(s.Name, fmt.Sprint(len(s.Songs)), s.Description)
			}
			t.Flush()
			return nil
		})
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend songs",
	Long: `Recommend songs from your listening history.

With no history the newest songs are shown instead.

Examples:
  euphony recommend
  euphony recommend --similar song-12
  euphony recommend --personal`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "Maximum number of songs to show")

	songsCmd.Flags().StringVar(&songsArtist, "artist", "", "Only songs whose artist contains this text")
	songsCmd.Flags().StringVar(&songsMood, "mood", "", "Only songs whose mood contains this text")
	songsCmd.Flags().IntVarP(&songsLimit, "limit", "l", 50, "Maximum number of songs to show")

	recommendCmd.Flags().StringVar(&recommendSimilar, "similar", "", "Songs similar to this song id")
	recommendCmd.Flags().BoolVar(&recommendPersonal, "personal", false, "Mix from liked and recent songs")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "l", 20, "Maximum number of songs to show")

	rootCmd.AddCommand(searchCmd, songsCmd, trendingCmd, moodsCmd, artistsCmd, recommendCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		res := rt.catalog.Search(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if JSONOutput() {
			if res.Results == nil {
				res.Results = []core.Song{}
			}
			if res.Suggestions == nil {
				res.Suggestions = []core.Song{}
			}
			return printJSON(out, res)
		}
		return printSongs(out, res.Results, searchLimit)
	})
}

func runSongs(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		var songs []core.Song
		switch {
		case songsArtist != "" && songsMood != "":
			for _, s := range rt.catalog.ByArtist(songsArtist) {
				if core.ContainsFold(s.Genre, songsMood) {
					songs = append(songs, s)
				}
			}
		case songsArtist != "":
			songs = rt.catalog.ByArtist(songsArtist)
		case songsMood != "":
			songs = recommend.ForMood(rt.catalog, songsMood)
		default:
			songs = rt.catalog.All()
		}
		return printSongs(cmd.OutOrStdout(), songs, songsLimit)
	})
}

func runRecommend(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		all := rt.catalog.All()

		var songs []core.Song
		switch {
		case recommendSimilar != "":
			song, err := rt.findSong(recommendSimilar)
			if err != nil {
				return err
			}
			songs = recommend.SimilarTo(all, song, rt.rnd)
		case recommendPersonal:
			songs = recommend.Personalized(all, rt.library.Liked(), rt.history.RecentlyPlayed(), rt.rnd)
		default:
			songs = recommend.Score(all, rt.history.ListeningHistory())
			if len(songs) == 0 {
				songs = recommend.Trending(all)
			}
		}
		return printSongs(cmd.OutOrStdout(), songs, recommendLimit)
	})
}

// withRuntime opens the runtime for the duration of fn.
func withRuntime(cmd *cobra.Command, fn func(rt *appRuntime) error) error {
	rt, err := openRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.logger.Warn("failed to close storage", "error", err)
		}
	}()
	return fn(rt)
}
