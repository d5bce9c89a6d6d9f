package cli

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tessro/euphony/internal/audio"
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/config"
	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/history"
	"github.com/tessro/euphony/internal/library"
	"github.com/tessro/euphony/internal/session"
	"github.com/tessro/euphony/internal/storage"
)

// appRuntime holds the stores a command works against.
type appRuntime struct {
	cfg     *config.Config
	store   storage.Store
	catalog *catalog.Store
	history *history.Tracker
	library *library.Store
	rnd     core.RandFunc
	logger  *slog.Logger

	backend *audio.SimBackend
	session *session.Session
}

// openRuntime opens storage, builds the catalog and loads persisted state.
// Unreadable persisted state is logged and treated as empty.
func openRuntime(ctx context.Context, c *config.Config) (*appRuntime, error) {
	logger := slog.Default()

	store, err := storage.Open(ctx, c.Storage)
	if err != nil {
		return nil, errors.Persistence(c.Storage.Backend+" store", err)
	}

	rnd := newRand(c.Catalog.Seed)
	rt := &appRuntime{
		cfg:     c,
		store:   store,
		catalog: catalog.LoadFile(c.Catalog.Path, rnd, logger),
		history: history.NewTracker(store, logger),
		library: library.New(store, library.WithLogger(logger)),
		rnd:     rnd,
		logger:  logger,
	}

	if err := rt.history.Load(ctx); err != nil {
		logger.Warn("failed to load listening history", "error", err)
	}
	if err := rt.library.Load(ctx); err != nil {
		logger.Warn("failed to load library", "error", err)
	}
	return rt, nil
}

// newRand returns a RandFunc seeded from seed, or from the clock when zero.
func newRand(seed int64) core.RandFunc {
	s := uint64(seed)
	if seed == 0 {
		s = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)).IntN
}

// startSession builds a playback session on a simulated audio backend.
func (rt *appRuntime) startSession() *session.Session {
	if rt.session != nil {
		return rt.session
	}

	pb := rt.cfg.Playback
	rt.backend = audio.NewSimBackend(audio.SimOptions{BlockAutoplay: pb.AutoplayBlocked})
	driver := audio.NewDriver(rt.backend,
		audio.WithWatchdogGrace(pb.WatchdogDuration()),
		audio.WithLogger(rt.logger),
	)
	rt.session = session.New(rt.catalog, driver, rt.history,
		session.WithRand(rt.rnd),
		session.WithTickInterval(pb.TickDuration()),
		session.WithModes(pb.Shuffle, pb.Repeat),
		session.WithVolume(pb.VolumeLevel()),
		session.WithLogger(rt.logger),
	)
	return rt.session
}

// findSong looks a song up by id.
func (rt *appRuntime) findSong(id string) (core.Song, error) {
	song, ok := rt.catalog.Get(id)
	if !ok {
		return core.Song{}, fmt.Errorf("song %q: %w", id, errors.ErrNotFound)
	}
	return song, nil
}

// Close stops playback and releases storage.
func (rt *appRuntime) Close() error {
	if rt.session != nil {
		_ = rt.session.Close()
	}
	return rt.store.Close()
}
