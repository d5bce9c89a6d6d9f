// Package library manages liked songs, the user library and playlists.
package library

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
	"github.com/tessro/euphony/internal/logging"
	"github.com/tessro/euphony/internal/storage"
)

// Store holds the three library collections. Every mutation persists the
// whole affected collection before returning. A persistence failure is
// logged and returned; the in-memory change is kept.
type Store struct {
	mu        sync.RWMutex
	store     storage.Store
	logger    *slog.Logger
	newID     func() string
	liked     []core.Song
	library   []core.Song
	playlists []core.Playlist
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides playlist id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store persisting to store.
func New(store storage.Store, opts ...Option) *Store {
	s := &Store{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// Load replaces all collections with their persisted values.
func (s *Store) Load(ctx context.Context) error {
	var liked, library []core.Song
	var playlists []core.Playlist

	if _, err := storage.LoadJSON(ctx, s.store, storage.KeyLikedSongs, &liked); err != nil {
		return errors.Persistence(storage.KeyLikedSongs, err)
	}
	if _, err := storage.LoadJSON(ctx, s.store, storage.KeyUserLibrary, &library); err != nil {
		return errors.Persistence(storage.KeyUserLibrary, err)
	}
	if _, err := storage.LoadJSON(ctx, s.store, storage.KeyPlaylists, &playlists); err != nil {
		return errors.Persistence(storage.KeyPlaylists, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.liked = liked
	s.library = library
	s.playlists = playlists
	return nil
}

// ToggleLike adds song to liked songs, or removes it if present.
// It returns whether the song is liked afterwards.
func (s *Store) ToggleLike(ctx context.Context, song core.Song) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	liked := true
	if i := core.IndexOf(s.liked, song.ID); i >= 0 {
		s.liked = slices.Delete(s.liked, i, i+1)
		liked = false
	} else {
		s.liked = append(s.liked, song)
	}
	return liked, s.save(ctx, storage.KeyLikedSongs, songsOrEmpty(s.liked))
}

// IsLiked reports whether the song id is liked.
func (s *Store) IsLiked(songID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.IndexOf(s.liked, songID) >= 0
}

// Liked returns liked songs in the order they were liked.
func (s *Store) Liked() []core.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.liked)
}

// AddToLibrary adds song unless already present.
func (s *Store) AddToLibrary(ctx context.Context, song core.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if core.IndexOf(s.library, song.ID) >= 0 {
		return nil
	}
	s.library = append(s.library, song)
	return s.save(ctx, storage.KeyUserLibrary, songsOrEmpty(s.library))
}

// RemoveFromLibrary removes the song id. Unknown ids are ignored.
func (s *Store) RemoveFromLibrary(ctx context.Context, songID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.library = slices.DeleteFunc(s.library, func(song core.Song) bool { return song.ID == songID })
	return s.save(ctx, storage.KeyUserLibrary, songsOrEmpty(s.library))
}

// Library returns the user library in insertion order.
func (s *Store) Library() []core.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.library)
}

// CreatePlaylist appends an empty playlist. Blank names are rejected with
// ErrInvalidPlaylistName and change nothing.
func (s *Store) CreatePlaylist(ctx context.Context, name string) (core.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Playlist{}, errors.ErrInvalidPlaylistName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := core.Playlist{ID: s.newID(), Name: name, Songs: []core.Song{}}
	s.playlists = append(s.playlists, p)
	return p.Clone(), s.savePlaylists(ctx)
}

// AddToPlaylist appends song to the playlist. It is a no-op when the
// playlist does not exist or already holds the song.
func (s *Store) AddToPlaylist(ctx context.Context, playlistID string, song core.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.playlistIndex(playlistID)
	if i < 0 || s.playlists[i].Contains(song.ID) {
		return nil
	}
	s.playlists[i].Songs = append(s.playlists[i].Songs, song)
	return s.savePlaylists(ctx)
}

// RemoveFromPlaylist removes songID from the playlist. Unknown ids are ignored.
func (s *Store) RemoveFromPlaylist(ctx context.Context, playlistID, songID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.playlistIndex(playlistID); i >= 0 {
		s.playlists[i].Songs = slices.DeleteFunc(s.playlists[i].Songs, func(song core.Song) bool {
			return song.ID == songID
		})
	}
	return s.savePlaylists(ctx)
}

// RemovePlaylist deletes the playlist. Unknown ids are ignored.
func (s *Store) RemovePlaylist(ctx context.Context, playlistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playlists = slices.DeleteFunc(s.playlists, func(p core.Playlist) bool { return p.ID == playlistID })
	return s.savePlaylists(ctx)
}

// Playlists returns copies of all playlists in creation order.
func (s *Store) Playlists() []core.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		out[i] = p.Clone()
	}
	return out
}

// Playlist returns a copy of the playlist with the given id.
func (s *Store) Playlist(playlistID string) (core.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.playlistIndex(playlistID); i >= 0 {
		return s.playlists[i].Clone(), true
	}
	return core.Playlist{}, false
}

// FindPlaylist resolves an id or a case-insensitive exact name.
func (s *Store) FindPlaylist(ref string) (core.Playlist, bool) {
	if p, ok := s.Playlist(ref); ok {
		return p, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.playlists {
		if strings.EqualFold(p.Name, ref) {
			return p.Clone(), true
		}
	}
	return core.Playlist{}, false
}

func (s *Store) playlistIndex(id string) int {
	return slices.IndexFunc(s.playlists, func(p core.Playlist) bool { return p.ID == id })
}

func (s *Store) savePlaylists(ctx context.Context) error {
	playlists := s.playlists
	if playlists == nil {
		playlists = []core.Playlist{}
	}
	return s.save(ctx, storage.KeyPlaylists, playlists)
}

// save persists v under key. Callers hold s.mu.
func (s *Store) save(ctx context.Context, key string, v any) error {
	if err := storage.SaveJSON(ctx, s.store, key, v); err != nil {
		err = errors.Persistence(key, err)
		s.logger.Warn("failed to persist library", "key", key, "error", err)
		return err
	}
	return nil
}

func songsOrEmpty(songs []core.Song) []core.Song {
	if songs == nil {
		return []core.Song{}
	}
	return songs
}
