// Package history tracks what the listener has played, most recent first.
package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tessro/euphony/internal/core"
	eerrors "github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/logging"
	"github.com/tessro/euphony/internal/storage"
)

// List caps.
const (
	RecentLimit  = 20
	HistoryLimit = 50
)

// Tracker keeps the recently-played and listening-history lists. Both are
// unique by song id and ordered most recent first.
type Tracker struct {
	mu      sync.RWMutex
	store   storage.Store
	logger  *slog.Logger
	recent  []core.Song
	history []core.Song
}

// NewTracker creates an empty tracker persisting to store.
func NewTracker(store storage.Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logging.OrDefault(logger),
	}
}

// Load replaces the in-memory lists with the persisted ones. Missing keys load as empty.
func (t *Tracker) Load(ctx context.Context) error {
	var recent, history []core.Song
	if _, err := storage.LoadJSON(ctx, t.store, storage.KeyRecentlyPlayed, &recent); err != nil {
		return eerrors.Persistence(storage.KeyRecentlyPlayed, err)
	}
	if _, err := storage.LoadJSON(ctx, t.store, storage.KeyListeningHistory, &history); err != nil {
		return eerrors.Persistence(storage.KeyListeningHistory, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.recent = truncate(recent, RecentLimit)
	t.history = truncate(history, HistoryLimit)
	return nil
}

// RecordPlay moves song to the front of both lists and persists them.
// A persistence failure is returned but the in-memory update stands.
func (t *Tracker) RecordPlay(ctx context.Context, song core.Song) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = pushFront(t.recent, song, RecentLimit)
	t.history = pushFront(t.history, song, HistoryLimit)

	return t.persist(ctx)
}

// Clear empties both lists.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recent = nil
	t.history = nil
	return t.persist(ctx)
}

// RecentlyPlayed returns up to RecentLimit songs, most recent first.
func (t *Tracker) RecentlyPlayed() []core.Song {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]core.Song(nil), t.recent...)
}

// ListeningHistory returns up to HistoryLimit songs, most recent first.
func (t *Tracker) ListeningHistory() []core.Song {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]core.Song(nil), t.history...)
}

// persist writes both lists. Callers hold t.mu.
func (t *Tracker) persist(ctx context.Context) error {
	var errs []error
	if err := storage.SaveJSON(ctx, t.store, storage.KeyRecentlyPlayed, nonNil(t.recent)); err != nil {
		errs = append(errs, eerrors.Persistence(storage.KeyRecentlyPlayed, err))
	}
	if err := storage.SaveJSON(ctx, t.store, storage.KeyListeningHistory, nonNil(t.history)); err != nil {
		errs = append(errs, eerrors.Persistence(storage.KeyListeningHistory, err))
	}

	err := errors.Join(errs...)
	if err != nil {
		t.logger.Warn("failed to persist history", "error", err)
	}
	return err
}

// pushFront returns list with song first, any older entry of the same id removed, capped at limit.
func pushFront(list []core.Song, song core.Song, limit int) []core.Song {
	out := make([]core.Song, 0, min(len(list)+1, limit))
	out = append(out, song)
	for _, s := range list {
		if len(out) == limit {
			break
		}
		if s.ID != song.ID {
			out = append(out, s)
		}
	}
	return out
}

func truncate(list []core.Song, limit int) []core.Song {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

func nonNil(list []core.Song) []core.Song {
	if list == nil {
		return []core.Song{}
	}
	return list
}
