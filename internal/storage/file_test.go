package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tessro/euphony/internal/config"
	"github.com/tessro/euphony/internal/core"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")

	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	// Missing key is not an error
	data, err := store.Get(ctx, KeyLikedSongs)
	if err != nil {
		t.Errorf("Get() error = %v", err)
	}
	if data != nil {
		t.Error("Get() should return nil for a missing key")
	}

	liked := []core.Song{{ID: "s1", Name: "Tum Hi Ho", Artist: "Arijit Singh", Duration: 262}}
	if err := SaveJSON(ctx, store, KeyLikedSongs, liked); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	var loaded []core.Song
	found, err := LoadJSON(ctx, store, KeyLikedSongs, &loaded)
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}
	if !found {
		t.Fatal("LoadJSON() found = false after save")
	}
	if len(loaded) != 1 || loaded[0].ID != "s1" || loaded[0].Duration != 262 {
		t.Errorf("loaded = %+v, want the saved song", loaded)
	}

	info, err := os.Stat(filepath.Join(dir, KeyLikedSongs+".json"))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("File permissions = %o, want 0600", mode)
	}

	if err := store.Delete(ctx, KeyLikedSongs); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if data, _ := store.Get(ctx, KeyLikedSongs); data != nil {
		t.Error("Get() after Delete should return nil")
	}

	// Deleting again is fine
	if err := store.Delete(ctx, KeyLikedSongs); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestFileStoreUsesPersistedJSONFieldNames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, _ := NewFileStore(dir)

	song := core.Song{ID: "7", Name: "Song", ReleaseYear: "2019", ImageURL: "http://img"}
	if err := SaveJSON(ctx, store, KeyRecentlyPlayed, []core.Song{song}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "recentlyPlayed.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, field := range []string{`"releaseYear":"2019"`, `"imageUrl":"http://img"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("persisted JSON %s missing %s", raw, field)
		}
	}
}

func TestLoadJSONCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, KeyPlaylists, []byte("{not json"))

	var v []core.Playlist
	if _, err := LoadJSON(ctx, store, KeyPlaylists, &v); err == nil {
		t.Error("LoadJSON() error = nil, want parse error")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, configWithBackend("s3")); err == nil {
		t.Error("Open() error = nil, want unknown backend error")
	}
	store, err := Open(ctx, configWithBackend("file"))
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", store)
	}
}

func configWithBackend(backend string) config.StorageConfig {
	return config.StorageConfig{Backend: backend, Dir: os.TempDir()}
}
