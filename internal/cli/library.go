package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/wizard"
)

var (
	historyFull  bool
	historyClear bool
)

var likeCmd = &cobra.Command{
	Use:   "like <song-id>",
	Short: "Like or unlike a song",
	Long:  `Toggle a song in your liked songs.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			song, err := rt.findSong(args[0])
			if err != nil {
				return err
			}
			liked, err := rt.library.ToggleLike(cmd.Context(), song)
			if err != nil {
				return fmt.Errorf("failed to save liked songs: %w", err)
			}
			out := cmd.OutOrStdout()
			if JSONOutput() {
				return printJSON(out, map[string]any{"id": song.ID, "liked": liked})
			}
			if liked {
				fmt.Fprintf(out, "♥ Liked %s\n", song.Title())
			} else {
				fmt.Fprintf(out, "♡ Unliked %s\n", song.Title())
			}
			return nil
		})
	},
}

var likedCmd = &cobra.Command{
	Use:   "liked",
	Short: "List liked songs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			return printSongs(cmd.OutOrStdout(), rt.library.Liked(), 0)
		})
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage your library",
	Long:  `List, add or remove songs saved to your library.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			return printSongs(cmd.OutOrStdout(), rt.library.Library(), 0)
		})
	},
}

var libraryAddCmd = &cobra.Command{
	Use:   "add <song-id>",
	Short: "Add a song to your library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			song, err := rt.findSong(args[0])
			if err != nil {
				return err
			}
			if err := rt.library.AddToLibrary(cmd.Context(), song); err != nil {
				return fmt.Errorf("failed to save library: %w", err)
			}
			return report(cmd, "added", song.ID, "Added %s to your library", song.Title())
		})
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <song-id>",
	Short: "Remove a song from your library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			if err := rt.library.RemoveFromLibrary(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to save library: %w", err)
			}
			return report(cmd, "removed", args[0], "Removed %s from your library", args[0])
		})
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Manage playlists",
	Long:  `List, create and edit playlists. Playlists are named by id or name.`,
	Args:  cobra.NoArgs,
	RunE:  runPlaylistList,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a playlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			p, err := rt.library.CreatePlaylist(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if JSONOutput() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %s (%s)\n", p.Name, p.ID)
			return nil
		})
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add [playlist] <song-id>",
	Short: "Add a song to a playlist",
	Long: `Add a song to a playlist.

When the playlist is omitted and you have several, a picker is shown.

Examples:
  euphony playlist add "Road Trip" song-42
  euphony playlist add song-42`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPlaylistAdd,
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist> <song-id>",
	Short: "Remove a song from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			p, err := findPlaylist(rt, args[0])
			if err != nil {
				return err
			}
			if err := rt.library.RemoveFromPlaylist(cmd.Context(), p.ID, args[1]); err != nil {
				return err
			}
			return report(cmd, "removed", args[1], "Removed %s from %s", args[1], p.Name)
		})
	},
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			p, err := findPlaylist(rt, args[0])
			if err != nil {
				return err
			}
			if err := rt.library.RemovePlaylist(cmd.Context(), p.ID); err != nil {
				return err
			}
			return report(cmd, "deleted", p.ID, "Deleted playlist %s", p.Name)
		})
	},
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist>",
	Short: "Show the songs in a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			p, err := findPlaylist(rt, args[0])
			if err != nil {
				return err
			}
			if JSONOutput() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d songs)\n\n", p.Name, len(p.Songs))
			return printSongs(cmd.OutOrStdout(), p.Songs, 0)
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played songs",
	Long: `Show recently played songs, newest first.

--full shows the longer listening history used for recommendations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(rt *appRuntime) error {
			if historyClear {
				if err := rt.history.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				return report(cmd, "cleared", "", "Cleared listening history")
			}
			songs := rt.history.RecentlyPlayed()
			if historyFull {
				songs = rt.history.ListeningHistory()
			}
			return printSongs(cmd.OutOrStdout(), songs, 0)
		})
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyFull, "full", false, "Show the full listening history")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear recently played and listening history")

	libraryCmd.AddCommand(libraryAddCmd, libraryRemoveCmd)
	playlistCmd.AddCommand(playlistCreateCmd, playlistAddCmd, playlistRemoveCmd, playlistDeleteCmd, playlistShowCmd)
	rootCmd.AddCommand(likeCmd, likedCmd, libraryCmd, playlistCmd, historyCmd)
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		playlists := rt.library.Playlists()
		out := cmd.OutOrStdout()
		if JSONOutput() {
			if playlists == nil {
				playlists = []core.Playlist{}
			}
			return printJSON(out, playlists)
		}
		if len(playlists) == 0 {
			fmt.Fprintln(out, "No playlists. Create one with 'euphony playlist create <name>'")
			return nil
		}
		t := NewTableWriter(out, "", "ID", "NAME", "SONGS", "LENGTH")
		for _, p := range playlists {
			total := 0
			for _, s := range p.Songs {
				total += s.EffectiveDuration()
			}
			t.Row(StatusIcon(len(p.Songs) > 0), p.ID, p.Name, fmt.Sprint(len(p.Songs)), FormatDuration(total))
		}
		t.Flush()
		return nil
	})
}

func runPlaylistAdd(cmd *cobra.Command, args []string) error {
	return withRuntime(cmd, func(rt *appRuntime) error {
		ref, songID := "", args[0]
		if len(args) == 2 {
			ref, songID = args[0], args[1]
		}

		song, err := rt.findSong(songID)
		if err != nil {
			return err
		}

		playlists := rt.library.Playlists()
		var target core.Playlist
		switch {
		case ref != "":
			if target, err = findPlaylist(rt, ref); err != nil {
				return err
			}
		case !wizard.NeedsPlaylist(ref, playlists):
			target = playlists[0]
		default:
			picker := wizard.NewInteractive()
			picker.SetEnabled(!JSONOutput())
			picker.SetPlaylists(playlists)
			selected, err := picker.PromptPlaylist()
			if err != nil {
				return err
			}
			if selected == nil {
				return fmt.Errorf("no playlist given. Use 'euphony playlist add <playlist> %s'", song.ID)
			}
			target = *selected
		}

		if err := rt.library.AddToPlaylist(cmd.Context(), target.ID, song); err != nil {
			return err
		}
		return report(cmd, "added", song.ID, "Added %s to %s", song.Title(), target.Name)
	})
}

func findPlaylist(rt *appRuntime, ref string) (core.Playlist, error) {
	p, ok := rt.library.FindPlaylist(ref)
	if !ok {
		return core.Playlist{}, fmt.Errorf("playlist %q: %w", ref, errors.ErrNotFound)
	}
	return p, nil
}

// report prints a status object in JSON mode, or the formatted message.
func report(cmd *cobra.Command, status, id, format string, args ...any) error {
	out := cmd.OutOrStdout()
	if JSONOutput() {
		v := map[string]string{"status": status}
		if id != "" {
			v["id"] = id
		}
		return printJSON(out, v)
	}
	fmt.Fprintf(out, format+"\n", args...)
	return nil
}
