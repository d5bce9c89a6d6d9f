package session

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"testing"

	"github.com/tessro/euphony/internal/audio"
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/history"
	"github.com/tessro/euphony/internal/recommend"
	"github.com/tessro/euphony/internal/storage"
)

func TestPlayStartsAndRecordsHistory(t *testing.T) {
	h := newHarness(5)
	ctx := context.Background()

	if err := h.s.Play(ctx, h.song(0)); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	state := h.s.State()
	if state.Status != core.StatusPlaying || !state.IsPlaying {
		t.Errorf("Status = %v, want playing", state.Status)
	}
	if state.Song == nil || state.Song.ID != "song-1" {
		t.Fatalf("Song = %v, want song-1", state.Song)
	}
	if state.Duration != 30 || state.Progress != 0 {
		t.Errorf("Duration/Progress = %d/%d, want 30/0", state.Duration, state.Progress)
	}
	if h.driver.lastURL() != "song-1" {
		t.Errorf("driver loaded %q, want song-1", h.driver.lastURL())
	}
	if recent := h.tracker.RecentlyPlayed(); len(recent) != 1 || recent[0].ID != "song-1" {
		t.Errorf("RecentlyPlayed() = %v, want [song-1]", recent)
	}
	if h.count(EventTrackChange) != 1 || h.count(EventRecommendations) != 1 {
		t.Errorf("events = %v, want one track change and one refresh", h.events)
	}
}

func TestPlayDefaultsMissingDuration(t *testing.T) {
	h := newHarness(1)
	song := h.song(0)
	song.Duration = 0

	_ = h.s.Play(context.Background(), song)
	if got := h.s.State().Duration; got != core.DefaultDuration {
		t.Errorf("Duration = %d, want %d", got, core.DefaultDuration)
	}
}

func TestPlayBlockedKeepsSongSelected(t *testing.T) {
	h := newHarness(5)
	h.driver.blockN = 1

	err := h.s.Play(context.Background(), h.song(2))
	if !stderrors.Is(err, errors.ErrPlaybackBlocked) {
		t.Fatalf("Play() error = %v, want ErrPlaybackBlocked", err)
	}

	state := h.s.State()
	if state.Song == nil || state.Song.ID != "song-3" {
		t.Fatalf("Song = %v, want song-3 selected", state.Song)
	}
	if state.Status != core.StatusPaused || !state.Blocked {
		t.Errorf("Status = %v Blocked = %v, want paused and blocked", state.Status, state.Blocked)
	}
	if len(h.tracker.RecentlyPlayed()) != 1 {
		t.Error("blocked play was not recorded in history")
	}
	if h.count(EventBlocked) != 1 {
		t.Errorf("blocked events = %d, want 1", h.count(EventBlocked))
	}
	if h.tick() {
		t.Error("clock ran while blocked")
	}

	if !h.s.Interact(audio.InputKey) {
		t.Fatal("Interact() = false, want playback to start")
	}
	state = h.s.State()
	if state.Status != core.StatusPlaying || state.Blocked {
		t.Errorf("after gesture Status = %v Blocked = %v, want playing", state.Status, state.Blocked)
	}
	if h.s.Interact(audio.InputPointer) {
		t.Error("second Interact() = true, want no further retry")
	}
}

func TestSeekClampsProgress(t *testing.T) {
	tests := []struct {
		seek int
		want int
	}{
		{-5, 0},
		{0, 0},
		{12, 12},
		{30, 30},
		{500, 30},
	}

	h := newHarness(3)
	_ = h.s.Play(context.Background(), h.song(0))

	for _, tt := range tests {
		if err := h.s.Seek(context.Background(), tt.seek); err != nil {
			t.Fatalf("Seek(%d) error = %v", tt.seek, err)
		}
		if got := h.s.State().Progress; got != tt.want {
			t.Errorf("Seek(%d) progress = %d, want %d", tt.seek, got, tt.want)
		}
		if last := h.driver.seeks[len(h.driver.seeks)-1]; last != tt.want {
			t.Errorf("Seek(%d) forwarded %d, want %d", tt.seek, last, tt.want)
		}
	}
	if h.s.State().Status != core.StatusPlaying {
		t.Error("Seek changed the session status")
	}
}

func TestSeekWithoutSongIsNoop(t *testing.T) {
	h := newHarness(3)
	if err := h.s.Seek(context.Background(), 10); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if len(h.driver.seeks) != 0 {
		t.Error("Seek reached the driver with no song selected")
	}
}

func TestClockAdvancesOnceAtDuration(t *testing.T) {
	h := newHarness(5)
	_ = h.s.Play(context.Background(), h.song(0))
	firstLoad := h.driver.load

	for i := 0; i < 29; i++ {
		if !h.tick() {
			t.Fatalf("clock stopped early at tick %d", i+1)
		}
	}
	if got := h.s.State().Progress; got != 29 {
		t.Fatalf("Progress = %d, want 29", got)
	}
	if h.tick() {
		t.Error("clock kept running past duration")
	}

	// The driver's end and watchdog for the finished load arrive late.
	h.driver.onEnded(firstLoad)
	h.driver.onEnded(firstLoad)

	if n := h.count(EventTrackComplete); n != 1 {
		t.Errorf("track complete events = %d, want 1", n)
	}
	if n := len(h.driver.loads); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
	if got := h.s.State().Song.ID; got != "song-2" {
		t.Errorf("current song = %s, want song-2", got)
	}
}

func TestDriverEndBeatsClock(t *testing.T) {
	h := newHarness(5)
	_ = h.s.Play(context.Background(), h.song(0))
	_ = h.s.Seek(context.Background(), 29)

	h.s.mu.Lock()
	staleGen := h.s.gen
	h.s.mu.Unlock()

	h.driver.onEnded(h.driver.load)
	if h.s.tickOnce(staleGen) {
		t.Error("stale clock kept running")
	}

	if n := h.count(EventTrackComplete); n != 1 {
		t.Errorf("track complete events = %d, want 1", n)
	}
	if got := h.s.State().Song.ID; got != "song-2" {
		t.Errorf("current song = %s, want song-2", got)
	}
}

func TestRepeatRestartsSameSong(t *testing.T) {
	h := newHarness(5)
	if !h.s.ToggleRepeat() {
		t.Fatal("ToggleRepeat() = false, want true")
	}
	_ = h.s.Play(context.Background(), h.song(1))
	firstLoad := h.driver.load

	_ = h.s.Seek(context.Background(), 30)
	h.tick()
	h.driver.onEnded(firstLoad)

	state := h.s.State()
	if state.Song.ID != "song-2" || state.Progress != 0 || state.Status != core.StatusPlaying {
		t.Errorf("after repeat state = %s at %d (%v), want song-2 at 0 playing", state.Song.ID, state.Progress, state.Status)
	}
	if n := len(h.driver.loads); n != 2 {
		t.Errorf("loads = %d, want 2", n)
	}
	if n := len(h.tracker.ListeningHistory()); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
	if h.count(EventTrackRestart) != 1 || h.count(EventTrackChange) != 1 {
		t.Errorf("restart/change events = %d/%d, want 1/1", h.count(EventTrackRestart), h.count(EventTrackChange))
	}
}

func TestNextSequentialWraps(t *testing.T) {
	h := newHarness(3)
	ctx := context.Background()

	if err := h.s.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := h.s.State().Song.ID; got != "song-1" {
		t.Errorf("Next() with nothing playing = %s, want song-1", got)
	}

	_ = h.s.Play(ctx, h.song(2))
	_ = h.s.Next(ctx)
	if got := h.s.State().Song.ID; got != "song-1" {
		t.Errorf("Next() from last = %s, want song-1", got)
	}
}

func TestNextFromSongOutsideCatalog(t *testing.T) {
	h := newHarness(3)
	_ = h.s.Play(context.Background(), core.Song{ID: "external", Name: "Elsewhere"})
	_ = h.s.Next(context.Background())
	if got := h.s.State().Song.ID; got != "song-1" {
		t.Errorf("Next() = %s, want song-1", got)
	}
}

func TestNextEmptyCatalogIsNoop(t *testing.T) {
	h := newHarness(0)
	if err := h.s.Next(context.Background()); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if h.s.State().HasSong() || len(h.driver.loads) != 0 {
		t.Error("Next() on an empty catalog started something")
	}
}

func TestShuffleExcludesRecentlyPlayed(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	h := newHarness(15, WithRand(r.IntN))
	ctx := context.Background()
	h.s.ToggleShuffle()

	_ = h.s.Play(ctx, h.song(0))
	for i := 0; i < 100; i++ {
		excluded := map[string]bool{}
		for j, song := range h.tracker.RecentlyPlayed() {
			if j < ShuffleExclude {
				excluded[song.ID] = true
			}
		}

		_ = h.s.Next(ctx)
		if id := h.s.State().Song.ID; excluded[id] {
			t.Fatalf("step %d: shuffle picked recently played %s", i, id)
		}
	}
}

func TestShuffleFallsBackToWholeCatalog(t *testing.T) {
	h := newHarness(3, WithRand(func(int) int { return 0 }), WithModes(true, false))
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		_ = h.s.Play(ctx, h.song(i))
	}
	_ = h.s.Next(ctx)
	if got := h.s.State().Song.ID; got != "song-1" {
		t.Errorf("Next() = %s, want song-1 from the full catalog", got)
	}
}

func TestToggleAppliesOnNextAdvance(t *testing.T) {
	h := newHarness(5, WithRand(func(n int) int { return n - 1 }))
	ctx := context.Background()

	_ = h.s.Play(ctx, h.song(0))
	h.s.ToggleShuffle()
	if got := h.s.State().Song.ID; got != "song-1" {
		t.Errorf("ToggleShuffle changed the current song to %s", got)
	}
	_ = h.s.Next(ctx)
	if got := h.s.State().Song.ID; got != "song-5" {
		t.Errorf("Next() after shuffle = %s, want song-5", got)
	}
}

func TestPrevious(t *testing.T) {
	ctx := context.Background()

	t.Run("restarts past threshold", func(t *testing.T) {
		h := newHarness(5)
		_ = h.s.Play(ctx, h.song(2))
		_ = h.s.Seek(ctx, 10)

		_ = h.s.Previous(ctx)
		state := h.s.State()
		if state.Song.ID != "song-3" || state.Progress != 0 {
			t.Errorf("Previous() = %s at %d, want song-3 at 0", state.Song.ID, state.Progress)
		}
		if len(h.driver.loads) != 1 {
			t.Error("restart reloaded the resource")
		}
	})

	t.Run("sequential predecessor wraps", func(t *testing.T) {
		h := newHarness(5)
		_ = h.s.Play(ctx, h.song(0))
		_ = h.s.Seek(ctx, 3)

		_ = h.s.Previous(ctx)
		if got := h.s.State().Song.ID; got != "song-5" {
			t.Errorf("Previous() = %s, want song-5", got)
		}
	})

	t.Run("shuffle uses history", func(t *testing.T) {
		h := newHarness(5, WithModes(true, false))
		_ = h.s.Play(ctx, h.song(3))
		_ = h.s.Play(ctx, h.song(1))

		_ = h.s.Previous(ctx)
		if got := h.s.State().Song.ID; got != "song-4" {
			t.Errorf("Previous() = %s, want song-4", got)
		}
	})

	t.Run("nothing playing", func(t *testing.T) {
		h := newHarness(5)
		_ = h.s.Previous(ctx)
		if got := h.s.State().Song.ID; got != "song-1" {
			t.Errorf("Previous() = %s, want song-1", got)
		}
	})
}

func TestPauseResume(t *testing.T) {
	h := newHarness(3)
	ctx := context.Background()
	_ = h.s.Play(ctx, h.song(0))
	h.tick()

	_ = h.s.Pause(ctx)
	if st := h.s.State(); st.Status != core.StatusPaused || st.Progress != 1 {
		t.Errorf("after Pause status = %v progress = %d, want paused at 1", st.Status, st.Progress)
	}
	if !h.driver.paused {
		t.Error("driver not paused")
	}
	if h.tick() {
		t.Error("clock ticked while paused")
	}

	if err := h.s.Resume(ctx); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if st := h.s.State(); st.Status != core.StatusPlaying || st.Progress != 1 {
		t.Errorf("after Resume status = %v progress = %d, want playing at 1", st.Status, st.Progress)
	}
	if h.driver.resumes != 1 {
		t.Errorf("driver resumes = %d, want 1", h.driver.resumes)
	}
}

func TestResumeWithoutSongIsNoop(t *testing.T) {
	h := newHarness(3)
	if err := h.s.Resume(context.Background()); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if h.s.State().Status != core.StatusIdle {
		t.Error("Resume() left Idle with no song")
	}
}

func TestResumeReloadsAfterLoadFailure(t *testing.T) {
	h := newHarness(3)
	ctx := context.Background()
	h.driver.failNext = stderrors.New("decode failed")

	if err := h.s.Play(ctx, h.song(0)); err == nil {
		t.Fatal("Play() error = nil, want load failure")
	}
	if st := h.s.State(); st.Song == nil || st.Status != core.StatusPaused {
		t.Fatalf("after failure state = %+v, want song selected and paused", st)
	}

	if err := h.s.Resume(ctx); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if len(h.driver.loads) != 2 || h.s.State().Status != core.StatusPlaying {
		t.Errorf("Resume() did not reload: loads = %d status = %v", len(h.driver.loads), h.s.State().Status)
	}
}

func TestDriverErrorPausesWithoutAdvancing(t *testing.T) {
	h := newHarness(3)
	_ = h.s.Play(context.Background(), h.song(0))

	h.driver.onError(h.driver.load, stderrors.New("network"))

	st := h.s.State()
	if st.Status != core.StatusPaused || st.Song.ID != "song-1" {
		t.Errorf("after error state = %v %s, want paused on song-1", st.Status, st.Song.ID)
	}
	if len(h.driver.loads) != 1 {
		t.Error("resource error advanced to another song")
	}
	if h.count(EventError) != 1 {
		t.Errorf("error events = %d, want 1", h.count(EventError))
	}

	// Errors from an older load are ignored.
	h.driver.onError(h.driver.load-1, stderrors.New("late"))
	if h.count(EventError) != 1 {
		t.Error("stale error was reported")
	}
}

func TestTickUsesDriverPosition(t *testing.T) {
	h := newHarness(3)
	_ = h.s.Play(context.Background(), h.song(0))
	h.driver.hasPos = true
	h.driver.position = 12

	h.tick()
	if got := h.s.State().Progress; got != 12 {
		t.Errorf("Progress = %d, want 12 from the driver", got)
	}
}

func TestStop(t *testing.T) {
	h := newHarness(3)
	ctx := context.Background()
	_ = h.s.Play(ctx, h.song(0))
	load := h.driver.load

	if err := h.s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	st := h.s.State()
	if st.Status != core.StatusIdle || st.HasSong() {
		t.Errorf("after Stop state = %+v, want idle with no song", st)
	}
	if h.driver.closed != 1 {
		t.Error("driver not closed")
	}

	h.driver.onEnded(load)
	if h.s.State().HasSong() {
		t.Error("late end event restarted playback after Stop")
	}
}

func TestSetVolumeClamps(t *testing.T) {
	h := newHarness(1)
	_ = h.s.SetVolume(context.Background(), 1.7)
	if got := h.s.State().Volume; got != 1 {
		t.Errorf("Volume = %v, want 1", got)
	}
	_ = h.s.SetVolume(context.Background(), -0.2)
	if got := h.s.State().Volume; got != 0 {
		t.Errorf("Volume = %v, want 0", got)
	}
}

func TestRecommendations(t *testing.T) {
	h := newHarness(6)
	all := h.s.catalog.All()

	trending := recommend.Trending(all)
	if got := h.s.Recommendations(); len(got) != len(trending) {
		t.Errorf("initial recommendations = %d songs, want trending (%d)", len(got), len(trending))
	}

	_ = h.s.Play(context.Background(), h.song(0))
	for _, song := range h.s.Recommendations() {
		if song.ID == "song-1" {
			t.Error("recommendations include the song just played")
		}
	}
}

func TestSubscribeCancel(t *testing.T) {
	h := newHarness(2)
	var n int
	cancel := h.s.Subscribe(func(Event) { n++ })

	_ = h.s.SetVolume(context.Background(), 0.5)
	cancel()
	_ = h.s.SetVolume(context.Background(), 0.4)

	if n != 1 {
		t.Errorf("events after cancel = %d, want 1", n)
	}
}

func TestAudioDriverEndAndWatchdogAdvanceOnce(t *testing.T) {
	timers := &manualTimers{}
	backend := audio.NewSimBackend(audio.SimOptions{AfterFunc: timers.AfterFunc})
	drv := audio.NewDriver(backend, audio.WithAfterFunc(timers.AfterFunc))
	tracker := history.NewTracker(storage.NewMemoryStore(), nil)
	s := New(catalog.New(testSongs(4)), drv, tracker, WithTickInterval(0), WithResolver(resolveByID))

	completed := 0
	s.Subscribe(func(e Event) {
		if e.Type == EventTrackComplete {
			completed++
		}
	})

	if err := s.Play(context.Background(), s.catalog.At(0)); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	// Fires the natural end, then the watchdog, for the first load.
	timers.fireAll()

	if completed != 1 {
		t.Errorf("track complete events = %d, want 1", completed)
	}
	if got := s.State().Song.ID; got != "song-2" {
		t.Errorf("current song = %s, want song-2", got)
	}
	if got := backend.Opened(); got != 2 {
		t.Errorf("streams opened = %d, want 2", got)
	}
}

func TestTrackEndWithEmptyCatalogPauses(t *testing.T) {
	h := newHarness(0)
	song := testSongs(1)[0]
	if err := h.s.Play(context.Background(), song); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	h.driver.onEnded(h.driver.load)

	st := h.s.State()
	if st.Status != core.StatusPaused || st.IsPlaying {
		t.Errorf("status = %v (playing %v), want paused", st.Status, st.IsPlaying)
	}
	if st.Progress != st.Duration {
		t.Errorf("progress = %d, want %d", st.Progress, st.Duration)
	}
	if !st.HasSong() || st.Song.ID != song.ID {
		t.Errorf("song = %v, want %s kept selected", st.Song, song.ID)
	}
	if n := h.count(EventTrackComplete); n != 1 {
		t.Errorf("track complete events = %d, want 1", n)
	}
	if n := h.count(EventPause); n != 1 {
		t.Errorf("pause events = %d, want 1", n)
	}
	if h.tick() {
		t.Error("clock still running after the last track ended")
	}
}
