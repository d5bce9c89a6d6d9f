package session

import (
	"context"
	stderrors "errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tessro/euphony/internal/audio"
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/logging"
	"github.com/tessro/euphony/internal/recommend"
)

// RestartThreshold is how far into a track Previous restarts it instead
// of going back.
const RestartThreshold = 3

// Driver is the audio side of a session. *audio.Driver implements it.
type Driver interface {
	LoadAndPlay(ctx context.Context, ref audio.ResourceRef) (uint64, error)
	Pause()
	Resume() error
	Seek(seconds int)
	SetVolume(level float64) float64
	Position() (int, bool)
	Interact(kind audio.InputKind) bool
	Loaded() bool
	OnEnded(fn func(load uint64))
	OnError(fn func(load uint64, err error))
	Close() error
}

// History records plays. *history.Tracker implements it.
type History interface {
	RecordPlay(ctx context.Context, song core.Song) error
	RecentlyPlayed() []core.Song
	ListeningHistory() []core.Song
}

// Session is the playback state machine: Idle, Playing and Paused. It owns
// the progress clock and decides what plays when a track ends.
type Session struct {
	mu      sync.Mutex
	catalog *catalog.Store
	driver  Driver
	history History
	resolve func(core.Song) audio.ResourceRef
	rnd     core.RandFunc
	tick    time.Duration
	logger  *slog.Logger

	song     *core.Song
	status   core.Status
	progress int
	duration int
	shuffle  bool
	repeat   bool
	volume   float64
	blocked  bool

	// gen identifies the current play-through; clock ticks carry it.
	gen        uint64
	driverLoad uint64
	endHandled bool
	clockStop  chan struct{}
	recs       []core.Song

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

var _ core.Player = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used by shuffle.
func WithRand(fn core.RandFunc) Option {
	return func(s *Session) { s.rnd = fn }
}

// WithTickInterval sets the progress clock period. Zero or less disables
// the clock goroutine.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

// WithResolver overrides how songs map to playable resources.
func WithResolver(fn func(core.Song) audio.ResourceRef) Option {
	return func(s *Session) { s.resolve = fn }
}

// WithModes sets the initial shuffle and repeat flags.
func WithModes(shuffle, repeat bool) Option {
	return func(s *Session) {
		s.shuffle = shuffle
		s.repeat = repeat
	}
}

// WithVolume sets the initial volume in [0,1].
func WithVolume(level float64) Option {
	return func(s *Session) { s.volume = level }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an idle session over cat, registering itself for the
// driver's callbacks.
func New(cat *catalog.Store, driver Driver, hist History, opts ...Option) *Session {
	s := &Session{
		catalog: cat,
		driver:  driver,
		history: hist,
		resolve: audio.Resolve,
		rnd:     rand.IntN,
		tick:    time.Second,
		volume:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)

	s.volume = driver.SetVolume(s.volume)
	driver.OnEnded(s.handleDriverEnded)
	driver.OnError(s.handleDriverError)
	s.recs = s.computeRecommendations()
	return s
}

// Play makes song current and starts it. It returns nil when audio
// started and errors.ErrPlaybackBlocked when the song is selected but
// waiting for a user gesture. The play is recorded in history either way.
func (s *Session) Play(ctx context.Context, song core.Song) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	cp := song
	s.song = &cp
	s.duration = song.EffectiveDuration()
	err := s.startLocked(ctx)
	state := s.snapshotLocked()
	s.mu.Unlock()

	if herr := s.history.RecordPlay(ctx, song); herr != nil {
		s.logger.Warn("failed to record play", "song", song.ID, "error", herr)
	}

	s.emit(EventTrackChange, state, nil)
	s.emitStartResult(state, err)
	s.RefreshRecommendations()
	return err
}

// Pause stops the progress clock and the audio. A pending gesture retry
// is dropped.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	if s.song == nil || (s.status != core.StatusPlaying && !s.blocked) {
		s.mu.Unlock()
		return nil
	}
	s.stopClockLocked()
	s.driver.Pause()
	s.status = core.StatusPaused
	s.blocked = false
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventPause, state, nil)
	return nil
}

// Resume continues a paused song. If the driver lost its resource, for
// example after a load failure, the song is loaded again from the start.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	if s.song == nil || s.status != core.StatusPaused {
		s.mu.Unlock()
		return nil
	}

	var err error
	if s.driver.Loaded() {
		err = s.driver.Resume()
		switch {
		case err == nil:
			s.status = core.StatusPlaying
			s.blocked = false
			s.startClockLocked()
		case stderrors.Is(err, errors.ErrPlaybackBlocked):
			s.blocked = true
		}
	} else {
		err = s.startLocked(ctx)
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	if err == nil {
		s.emit(EventResume, state, nil)
		return nil
	}
	s.emitStartResult(state, err)
	return err
}

// Seek moves playback to seconds, clamped to the song's duration. The
// session state does not change.
func (s *Session) Seek(ctx context.Context, seconds int) error {
	s.mu.Lock()
	if s.song == nil {
		s.mu.Unlock()
		return nil
	}
	s.seekLocked(seconds)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventSeek, state, nil)
	return nil
}

// SetVolume clamps level to [0,1] and applies it.
func (s *Session) SetVolume(ctx context.Context, level float64) error {
	s.mu.Lock()
	s.volume = s.driver.SetVolume(level)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventVolumeChange, state, nil)
	return nil
}

// Next advances according to the repeat and shuffle flags.
func (s *Session) Next(ctx context.Context) error {
	return s.advance(ctx, func() bool { return true })
}

// Previous restarts the current song if it is more than a few seconds in.
// Otherwise it plays the previous song from history when shuffling, or the
// catalog predecessor.
func (s *Session) Previous(ctx context.Context) error {
	s.mu.Lock()
	var target core.Song
	switch {
	case s.song == nil:
		if s.catalog.Len() == 0 {
			s.mu.Unlock()
			return nil
		}
		target = s.catalog.At(0)

	case s.progress > RestartThreshold:
		s.seekLocked(0)
		state := s.snapshotLocked()
		s.mu.Unlock()
		s.emit(EventTrackRestart, state, nil)
		return nil

	default:
		recent := s.history.RecentlyPlayed()
		if s.shuffle && len(recent) >= 2 {
			target = recent[1]
			break
		}
		n := s.catalog.Len()
		if n == 0 {
			s.mu.Unlock()
			return nil
		}
		if i := s.catalog.Index(s.song.ID); i >= 0 {
			target = s.catalog.At((i - 1 + n) % n)
		} else {
			target = s.catalog.At(0)
		}
	}
	s.mu.Unlock()

	return s.Play(ctx, target)
}

// Stop releases the audio and returns to Idle with no song selected.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.resetLocked()
	err := s.driver.Close()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventStop, state, nil)
	return err
}

// ToggleShuffle flips shuffle and returns the new value. It applies from
// the next advance.
func (s *Session) ToggleShuffle() bool {
	s.mu.Lock()
	s.shuffle = !s.shuffle
	v := s.shuffle
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventModeChange, state, nil)
	return v
}

// ToggleRepeat flips repeat and returns the new value.
func (s *Session) ToggleRepeat() bool {
	s.mu.Lock()
	s.repeat = !s.repeat
	v := s.repeat
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventModeChange, state, nil)
	return v
}

// Interact forwards a user gesture to the driver. If it unblocks a
// pending start, the session moves to Playing and Interact returns true.
func (s *Session) Interact(kind audio.InputKind) bool {
	s.mu.Lock()
	started := s.driver.Interact(kind)
	if !started || s.song == nil || !s.blocked {
		s.mu.Unlock()
		return started
	}
	s.blocked = false
	s.status = core.StatusPlaying
	s.startClockLocked()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("playback unblocked", "song", state.Song.ID, "input", kind.String())
	s.emit(EventResume, state, nil)
	return true
}

// State returns a snapshot of the session.
func (s *Session) State() core.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Recommendations returns the list computed after the last play.
func (s *Session) Recommendations() []core.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Song, len(s.recs))
	copy(out, s.recs)
	return out
}

// RefreshRecommendations recomputes recommendations from the listening
// history, falling back to trending songs when there is none.
func (s *Session) RefreshRecommendations() {
	recs := s.computeRecommendations()

	s.mu.Lock()
	s.recs = recs
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(EventRecommendations, state, nil)
}

// Close stops the clock, releases the driver and drops all subscribers.
func (s *Session) Close() error {
	s.mu.Lock()
	s.resetLocked()
	err := s.driver.Close()
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = nil
	s.subMu.Unlock()
	return err
}

func (s *Session) computeRecommendations() []core.Song {
	songs := s.catalog.All()
	if recs := recommend.Score(songs, s.history.ListeningHistory()); len(recs) > 0 {
		return recs
	}
	return recommend.Trending(songs)
}

// startLocked (re)loads the current song from the beginning. It starts a
// new play-through, so end events from earlier ones are ignored.
func (s *Session) startLocked(ctx context.Context) error {
	s.stopClockLocked()
	s.gen++
	s.endHandled = false
	s.progress = 0
	s.blocked = false

	load, err := s.driver.LoadAndPlay(ctx, s.resolve(*s.song))
	s.driverLoad = load

	switch {
	case err == nil:
		s.status = core.StatusPlaying
		s.startClockLocked()
	case stderrors.Is(err, errors.ErrPlaybackBlocked):
		s.status = core.StatusPaused
		s.blocked = true
	default:
		s.status = core.StatusPaused
		s.logger.Warn("failed to start song", "song", s.song.ID, "error", err)
	}
	return err
}

func (s *Session) seekLocked(seconds int) {
	s.progress = min(max(seconds, 0), s.duration)
	s.driver.Seek(s.progress)
}

func (s *Session) resetLocked() {
	s.stopClockLocked()
	s.gen++
	s.endHandled = true
	s.song = nil
	s.status = core.StatusIdle
	s.progress = 0
	s.duration = 0
	s.blocked = false
}

func (s *Session) snapshotLocked() core.PlaybackState {
	state := core.PlaybackState{
		Status:    s.status,
		IsPlaying: s.status == core.StatusPlaying,
		Progress:  s.progress,
		Duration:  s.duration,
		Shuffle:   s.shuffle,
		Repeat:    s.repeat,
		Volume:    s.volume,
		Blocked:   s.blocked,
	}
	if s.song != nil {
		cp := *s.song
		state.Song = &cp
	}
	return state
}

func (s *Session) emitStartResult(state core.PlaybackState, err error) {
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrPlaybackBlocked):
		s.emit(EventBlocked, state, err)
	default:
		s.emit(EventError, state, err)
	}
}
