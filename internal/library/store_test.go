package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/tessro/euphony/internal/core"
	eerrors "github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/storage"
)

func song(id string) core.Song {
	return core.Song{ID: id, Name: "Song " + id}
}

func ids(songs []core.Song) string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.ID
	}
	return fmt.Sprint(out)
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("pl-%d", n)
	})
}

func TestToggleLikeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())

	_, _ = s.ToggleLike(ctx, song("a"))
	before := ids(s.Liked())

	liked, err := s.ToggleLike(ctx, song("b"))
	if err != nil || !liked {
		t.Fatalf("ToggleLike(b) = %v, %v, want true, nil", liked, err)
	}
	if !s.IsLiked("b") {
		t.Error("IsLiked(b) = false after like")
	}

	liked, err = s.ToggleLike(ctx, song("b"))
	if err != nil || liked {
		t.Fatalf("ToggleLike(b) again = %v, %v, want false, nil", liked, err)
	}
	if got := ids(s.Liked()); got != before {
		t.Errorf("Liked() = %s, want %s", got, before)
	}
}

func TestCreatePlaylist(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())

	p, err := s.CreatePlaylist(ctx, "  Road Trip ")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	if p.Name != "Road Trip" {
		t.Errorf("Name = %q, want %q", p.Name, "Road Trip")
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", p.ID, err)
	}

	q, _ := s.CreatePlaylist(ctx, "Road Trip")
	if q.ID == p.ID {
		t.Error("playlists share an id")
	}

	for _, blank := range []string{"", "   ", "\t\n"} {
		if _, err := s.CreatePlaylist(ctx, blank); !errors.Is(err, eerrors.ErrInvalidPlaylistName) {
			t.Errorf("CreatePlaylist(%q) error = %v, want ErrInvalidPlaylistName", blank, err)
		}
	}
	if n := len(s.Playlists()); n != 2 {
		t.Errorf("len(Playlists()) = %d, want 2", n)
	}
}

func TestAddToPlaylistDedup(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), sequentialIDs())
	p, _ := s.CreatePlaylist(ctx, "Mix")

	for _, id := range []string{"a", "b", "a", "c", "b", "a"} {
		if err := s.AddToPlaylist(ctx, p.ID, song(id)); err != nil {
			t.Fatalf("AddToPlaylist(%s) error = %v", id, err)
		}
	}

	got, ok := s.Playlist(p.ID)
	if !ok {
		t.Fatal("Playlist() not found")
	}
	if ids(got.Songs) != "[a b c]" {
		t.Errorf("Songs = %s, want [a b c]", ids(got.Songs))
	}
}

func TestRemoveFromPlaylist(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), sequentialIDs())
	p, _ := s.CreatePlaylist(ctx, "Mix")
	_ = s.AddToPlaylist(ctx, p.ID, song("a"))
	_ = s.AddToPlaylist(ctx, p.ID, song("b"))

	if err := s.RemoveFromPlaylist(ctx, p.ID, "a"); err != nil {
		t.Fatalf("RemoveFromPlaylist() error = %v", err)
	}
	if err := s.RemoveFromPlaylist(ctx, p.ID, "zzz"); err != nil {
		t.Errorf("RemoveFromPlaylist(unknown song) error = %v", err)
	}
	if err := s.RemoveFromPlaylist(ctx, "nope", "b"); err != nil {
		t.Errorf("RemoveFromPlaylist(unknown playlist) error = %v", err)
	}

	got, _ := s.Playlist(p.ID)
	if ids(got.Songs) != "[b]" {
		t.Errorf("Songs = %s, want [b]", ids(got.Songs))
	}
}

func TestRemovedPlaylistStaysRemoved(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), sequentialIDs())
	p, _ := s.CreatePlaylist(ctx, "Gone")

	if err := s.RemovePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("RemovePlaylist() error = %v", err)
	}
	if err := s.AddToPlaylist(ctx, p.ID, song("a")); err != nil {
		t.Errorf("AddToPlaylist() on removed playlist error = %v", err)
	}
	if _, ok := s.Playlist(p.ID); ok {
		t.Error("removed playlist came back")
	}
	if err := s.RemovePlaylist(ctx, p.ID); err != nil {
		t.Errorf("RemovePlaylist() twice error = %v", err)
	}
}

func TestPlaylistsReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), sequentialIDs())
	p, _ := s.CreatePlaylist(ctx, "Mix")
	_ = s.AddToPlaylist(ctx, p.ID, song("a"))

	lists := s.Playlists()
	lists[0].Songs[0].Name = "mutated"
	lists[0].Songs = append(lists[0].Songs, song("x"))

	got, _ := s.Playlist(p.ID)
	if ids(got.Songs) != "[a]" || got.Songs[0].Name != "Song a" {
		t.Errorf("store changed through a returned copy: %+v", got.Songs)
	}
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())

	_ = s.AddToLibrary(ctx, song("a"))
	_ = s.AddToLibrary(ctx, song("b"))
	_ = s.AddToLibrary(ctx, song("a"))
	if got := ids(s.Library()); got != "[a b]" {
		t.Errorf("Library() = %s, want [a b]", got)
	}

	_ = s.RemoveFromLibrary(ctx, "a")
	_ = s.RemoveFromLibrary(ctx, "missing")
	if got := ids(s.Library()); got != "[b]" {
		t.Errorf("Library() = %s, want [b]", got)
	}
}

func TestFindPlaylist(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore(), sequentialIDs())
	p, _ := s.CreatePlaylist(ctx, "Road Trip")

	if got, ok := s.FindPlaylist("pl-1"); !ok || got.ID != p.ID {
		t.Errorf("FindPlaylist(id) = %+v, %v", got, ok)
	}
	if got, ok := s.FindPlaylist("road trip"); !ok || got.ID != p.ID {
		t.Errorf("FindPlaylist(name) = %+v, %v", got, ok)
	}
	if _, ok := s.FindPlaylist("other"); ok {
		t.Error("FindPlaylist(other) found a playlist")
	}
}

func TestPersistAndLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store, sequentialIDs())

	_, _ = s.ToggleLike(ctx, song("liked"))
	_ = s.AddToLibrary(ctx, song("lib"))
	p, _ := s.CreatePlaylist(ctx, "Mix")
	_ = s.AddToPlaylist(ctx, p.ID, song("x"))

	for _, key := range []string{storage.KeyLikedSongs, storage.KeyUserLibrary, storage.KeyPlaylists} {
		if raw, _ := store.Get(ctx, key); raw == nil {
			t.Errorf("key %s not persisted", key)
		}
	}

	reloaded := New(store)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := ids(reloaded.Liked()); got != "[liked]" {
		t.Errorf("Liked() = %s, want [liked]", got)
	}
	if got := ids(reloaded.Library()); got != "[lib]" {
		t.Errorf("Library() = %s, want [lib]", got)
	}
	got, ok := reloaded.Playlist("pl-1")
	if !ok || got.Name != "Mix" || ids(got.Songs) != "[x]" {
		t.Errorf("Playlist(pl-1) = %+v, %v", got, ok)
	}
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	s := New(store)
	store.FailWith(errors.New("read-only"))

	liked, err := s.ToggleLike(ctx, song("a"))
	if !errors.Is(err, eerrors.ErrPersistence) {
		t.Errorf("ToggleLike() error = %v, want ErrPersistence", err)
	}
	if !liked || !s.IsLiked("a") {
		t.Error("like lost after persistence failure")
	}
}
