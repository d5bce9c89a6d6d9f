package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tessro/euphony/internal/audio"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/session"
	"github.com/tessro/euphony/internal/tail"
	"github.com/tessro/euphony/internal/wizard"
)

var (
	playID        string
	playCount     int
	playShuffle   bool
	playRepeat    bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Play music in the foreground",
	Long: `Start a playback session and print events as they happen.

Without a query or --id a song picker is shown, or playback starts from
the top of the catalog when not attached to a terminal. The session keeps
advancing until interrupted or --count songs have finished.

While playing, type a command and press Enter:
  (empty)   Play/Pause, or start audio when autoplay was blocked
  n / p     Next / previous song
  s / r     Toggle shuffle / repeat
  + / -     Volume up / down
  q         Quit

Examples:
  euphony play "blinding lights"
  euphony play --id song-42 --repeat
  euphony play --shuffle --count 5
  euphony play --format '{{.Type}} {{.Title}}'`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playID, "id", "", "Play a specific song id")
	playCmd.Flags().IntVarP(&playCount, "count", "n", 0, "Stop after this many songs finish (0 plays until interrupted)")
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "Enable shuffle mode")
	playCmd.Flags().BoolVar(&playRepeat, "repeat", false, "Enable repeat mode")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if _, err := tail.ParseTemplate(playFormat); err != nil {
		return err
	}

	// Handle Ctrl+C gracefully
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	song, err := pickSong(rt, args)
	if err == errPickerCancelled {
		return nil
	}
	if err != nil {
		return err
	}

	sess := rt.startSession()
	state := sess.State()
	if cmd.Flags().Changed("shuffle") && playShuffle != state.Shuffle {
		sess.ToggleShuffle()
	}
	if cmd.Flags().Changed("repeat") && playRepeat != state.Repeat {
		sess.ToggleRepeat()
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)

	watcher := tail.NewWatcher(sess, session.EventRecommendations)
	watcher.Listen()

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	go readControls(ctx, cmd.InOrStdin(), sess, cancel)

	if song != nil {
		err = sess.Play(ctx, *song)
	} else {
		err = sess.Next(ctx)
	}
	switch {
	case errors.IsBlocked(err):
		fmt.Fprintln(cmd.ErrOrStderr(), "Autoplay was blocked. Press Enter to start audio.")
	case err != nil:
		return err
	}

	out := cmd.OutOrStdout()
	completed := 0
	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			if playCount > 0 && completed >= playCount {
				continue
			}
			if err := printEvent(out, formatter, event); err != nil {
				return err
			}
			if event.Type == session.EventTrackComplete {
				completed++
				if playCount > 0 && completed >= playCount {
					cancel()
				}
			}

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

var errPickerCancelled = fmt.Errorf("no song selected")

// pickSong resolves the song to start with. Nil means start from the
// session's own next pick.
func pickSong(rt *appRuntime, args []string) (*core.Song, error) {
	if playID != "" {
		song, err := rt.findSong(playID)
		if err != nil {
			return nil, err
		}
		return &song, nil
	}

	if wizard.NeedsSong(args, playID) {
		picker := wizard.NewInteractive()
		picker.SetEnabled(!JSONOutput())
		if !picker.CanInteract() {
			return nil, nil
		}
		picker.SetSearchFunc(wizard.CatalogSearch(rt.catalog))
		song, err := picker.PromptSong()
		if err == nil && song == nil {
			return nil, errPickerCancelled
		}
		return song, err
	}

	query := strings.Join(args, " ")
	res := rt.catalog.Search(query)
	if len(res.Results) == 0 {
		return nil, fmt.Errorf("no songs found for '%s'", query)
	}
	return &res.Results[0], nil
}

type eventJSON struct {
	Type  string             `json:"type"`
	Time  time.Time          `json:"time"`
	State core.PlaybackState `json:"state"`
	Error string             `json:"error,omitempty"`
}

func printEvent(out io.Writer, formatter *tail.Formatter, e session.Event) error {
	if !JSONOutput() {
		_, err := fmt.Fprintln(out, formatter.Format(e))
		return err
	}
	v := eventJSON{Type: e.Type.String(), Time: e.Timestamp, State: e.State}
	if e.Err != nil {
		v.Error = e.Err.Error()
	}
	return json.NewEncoder(out).Encode(v)
}

// readControls treats every line on in as a key press and applies the
// typed command. It returns at EOF, on quit, or once ctx is done.
func readControls(ctx context.Context, in io.Reader, sess *session.Session, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		started := sess.Interact(audio.InputKey)
		if !control(ctx, sess, scanner.Text(), started) {
			quit()
			return
		}
	}
}

// control applies one typed command. It reports false when the user quits.
// started is true when the key press itself began blocked playback.
func control(ctx context.Context, sess *session.Session, line string, started bool) bool {
	var err error
	switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
	case "q", "quit":
		return false
	case "n", "next":
		err = sess.Next(ctx)
	case "p", "prev", "previous":
		err = sess.Previous(ctx)
	case "s", "shuffle":
		sess.ToggleShuffle()
	case "r", "repeat":
		sess.ToggleRepeat()
	case "+":
		err = sess.SetVolume(ctx, sess.State().Volume+0.1)
	case "-":
		err = sess.SetVolume(ctx, sess.State().Volume-0.1)
	case "":
		if !started {
			err = togglePlayback(ctx, sess)
		}
	default:
		slog.Debug("unknown playback command", "command", cmd)
	}

	if err != nil && !errors.IsBlocked(err) {
		slog.Warn("playback command failed", "command", line, "error", err)
	}
	return true
}

// togglePlayback pauses, resumes, or starts the next song.
func togglePlayback(ctx context.Context, sess *session.Session) error {
	state := sess.State()
	switch {
	case state.IsPlaying:
		return sess.Pause(ctx)
	case state.HasSong():
		return sess.Resume(ctx)
	default:
		return sess.Next(ctx)
	}
}
