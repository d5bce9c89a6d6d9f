package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tessro/euphony/internal/audio"
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/history"
	"github.com/tessro/euphony/internal/storage"
)

// fakeDriver records calls and lets tests raise callbacks by hand.
type fakeDriver struct {
	loads    []audio.ResourceRef
	load     uint64
	blockN   int
	failNext error
	pending  bool
	loaded   bool
	paused   bool
	resumes  int
	seeks    []int
	volume   float64
	position int
	hasPos   bool
	closed   int

	onEnded func(uint64)
	onError func(uint64, error)
}

func (d *fakeDriver) LoadAndPlay(_ context.Context, ref audio.ResourceRef) (uint64, error) {
	d.load++
	d.loads = append(d.loads, ref)
	d.position = 0
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		d.loaded = false
		return d.load, err
	}
	d.loaded = true
	if d.blockN > 0 {
		d.blockN--
		d.pending = true
		d.paused = true
		return d.load, errors.ErrPlaybackBlocked
	}
	d.paused = false
	return d.load, nil
}

func (d *fakeDriver) Pause() {
	d.paused = true
	d.pending = false
}

func (d *fakeDriver) Resume() error {
	d.resumes++
	if d.blockN > 0 {
		d.blockN--
		d.pending = true
		return errors.ErrPlaybackBlocked
	}
	d.paused = false
	return nil
}

func (d *fakeDriver) Seek(seconds int) {
	d.seeks = append(d.seeks, seconds)
	d.position = seconds
}

func (d *fakeDriver) SetVolume(level float64) float64 {
	d.volume = min(max(level, 0), 1)
	return d.volume
}

func (d *fakeDriver) Position() (int, bool) { return d.position, d.hasPos }

func (d *fakeDriver) Interact(audio.InputKind) bool {
	if !d.pending {
		return false
	}
	d.pending = false
	d.paused = false
	return true
}

func (d *fakeDriver) Loaded() bool { return d.loaded }

func (d *fakeDriver) OnEnded(fn func(uint64))        { d.onEnded = fn }
func (d *fakeDriver) OnError(fn func(uint64, error)) { d.onError = fn }

func (d *fakeDriver) Close() error {
	d.closed++
	d.loaded = false
	d.load++
	return nil
}

func (d *fakeDriver) lastURL() string {
	if len(d.loads) == 0 {
		return ""
	}
	return d.loads[len(d.loads)-1].URL
}

// manualTimers collects scheduled callbacks for the driver and sim backend.
type manualTimers struct {
	mu     sync.Mutex
	timers []func()
}

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

func (m *manualTimers) AfterFunc(_ time.Duration, f func()) audio.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = append(m.timers, f)
	return manualTimer{}
}

// fireAll runs every callback scheduled so far, including stopped ones.
func (m *manualTimers) fireAll() {
	m.mu.Lock()
	timers := append([]func(){}, m.timers...)
	m.mu.Unlock()
	for _, f := range timers {
		f()
	}
}

func testSongs(n int) []core.Song {
	songs := make([]core.Song, n)
	for i := range songs {
		songs[i] = core.Song{
			ID:          fmt.Sprintf("song-%d", i+1),
			Name:        fmt.Sprintf("Track %d", i+1),
			Artist:      fmt.Sprintf("Artist %d", i%3),
			Genre:       "Pop",
			Language:    "English",
			ReleaseYear: "2020",
			Duration:    30,
		}
	}
	return songs
}

// resolveByID maps songs to their id so tests can read loads back.
func resolveByID(song core.Song) audio.ResourceRef {
	return audio.ResourceRef{URL: song.ID, Duration: song.EffectiveDuration()}
}

type harness struct {
	s       *Session
	driver  *fakeDriver
	tracker *history.Tracker
	events  []Event
}

func newHarness(n int, opts ...Option) *harness {
	h := &harness{
		driver:  &fakeDriver{},
		tracker: history.NewTracker(storage.NewMemoryStore(), nil),
	}
	opts = append([]Option{WithTickInterval(0), WithResolver(resolveByID)}, opts...)
	h.s = New(catalog.New(testSongs(n)), h.driver, h.tracker, opts...)
	h.s.Subscribe(func(e Event) { h.events = append(h.events, e) })
	return h
}

func (h *harness) count(t EventType) int {
	n := 0
	for _, e := range h.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// tick runs one clock step for the current play-through.
func (h *harness) tick() bool {
	h.s.mu.Lock()
	gen := h.s.gen
	h.s.mu.Unlock()
	return h.s.tickOnce(gen)
}

func (h *harness) song(i int) core.Song {
	return h.s.catalog.At(i)
}
