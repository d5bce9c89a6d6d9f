package history

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tessro/euphony/internal/core"
	eerrors "github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/storage"
)

func song(id string) core.Song {
	return core.Song{ID: id, Name: "Song " + id, Artist: "Artist " + id}
}

func ids(songs []core.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.ID
	}
	return out
}

func TestRecordPlayMovesToFront(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(storage.NewMemoryStore(), nil)

	for _, id := range []string{"a", "b", "c", "b"} {
		if err := tr.RecordPlay(ctx, song(id)); err != nil {
			t.Fatalf("RecordPlay(%s) error = %v", id, err)
		}
	}

	want := "[b c a]"
	if got := fmt.Sprint(ids(tr.RecentlyPlayed())); got != want {
		t.Errorf("RecentlyPlayed() = %s, want %s", got, want)
	}
	if got := fmt.Sprint(ids(tr.ListeningHistory())); got != want {
		t.Errorf("ListeningHistory() = %s, want %s", got, want)
	}
}

func TestRecordPlayCaps(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(storage.NewMemoryStore(), nil)

	for i := 0; i < 60; i++ {
		_ = tr.RecordPlay(ctx, song(fmt.Sprint(i)))
	}

	recent := tr.RecentlyPlayed()
	if len(recent) != RecentLimit {
		t.Errorf("len(RecentlyPlayed()) = %d, want %d", len(recent), RecentLimit)
	}
	if recent[0].ID != "59" || recent[RecentLimit-1].ID != "40" {
		t.Errorf("RecentlyPlayed() spans %s..%s, want 59..40", recent[0].ID, recent[RecentLimit-1].ID)
	}

	history := tr.ListeningHistory()
	if len(history) != HistoryLimit {
		t.Errorf("len(ListeningHistory()) = %d, want %d", len(history), HistoryLimit)
	}
	if history[HistoryLimit-1].ID != "10" {
		t.Errorf("oldest history entry = %s, want 10", history[HistoryLimit-1].ID)
	}
}

func TestPersistAndLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	tr := NewTracker(store, nil)
	_ = tr.RecordPlay(ctx, song("x"))
	_ = tr.RecordPlay(ctx, song("y"))

	var persisted []core.Song
	if _, err := storage.LoadJSON(ctx, store, storage.KeyRecentlyPlayed, &persisted); err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if got := fmt.Sprint(ids(persisted)); got != "[y x]" {
		t.Errorf("persisted recentlyPlayed = %s, want [y x]", got)
	}

	reloaded := NewTracker(store, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := fmt.Sprint(ids(reloaded.ListeningHistory())); got != "[y x]" {
		t.Errorf("reloaded ListeningHistory() = %s, want [y x]", got)
	}
}

func TestLoadEmptyStore(t *testing.T) {
	tr := NewTracker(storage.NewMemoryStore(), nil)
	if err := tr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(tr.RecentlyPlayed()) != 0 || len(tr.ListeningHistory()) != 0 {
		t.Error("Load() on empty store should leave both lists empty")
	}
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.FailWith(errors.New("quota exceeded"))
	tr := NewTracker(store, nil)

	err := tr.RecordPlay(ctx, song("a"))
	if !errors.Is(err, eerrors.ErrPersistence) {
		t.Errorf("RecordPlay() error = %v, want ErrPersistence", err)
	}
	if got := fmt.Sprint(ids(tr.RecentlyPlayed())); got != "[a]" {
		t.Errorf("RecentlyPlayed() = %s, want [a]", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	tr := NewTracker(store, nil)
	_ = tr.RecordPlay(ctx, song("a"))

	if err := tr.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(tr.RecentlyPlayed()) != 0 {
		t.Error("RecentlyPlayed() not empty after Clear")
	}
	raw, _ := store.Get(ctx, storage.KeyListeningHistory)
	if string(raw) != "[]" {
		t.Errorf("persisted listening_history = %s, want []", raw)
	}
}
