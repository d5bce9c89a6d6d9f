// Package catalog holds the immutable song list a session plays from.
package catalog

import (
	"regexp"
	"strings"

	"github.com/tessro/euphony/internal/core"
)

// MaxSuggestions caps the suggestion list returned by Search.
const MaxSuggestions = 5

// Store is a read-only catalog snapshot. It is safe for concurrent use.
type Store struct {
	songs []core.Song
	index map[string]int
}

// SearchResult holds search matches and typeahead suggestions.
type SearchResult struct {
	Results     []core.Song `json:"results"`
	Suggestions []core.Song `json:"suggestions"`
}

// New creates a store over songs. Later duplicates of an id are dropped.
func New(songs []core.Song) *Store {
	s := &Store{
		songs: make([]core.Song, 0, len(songs)),
		index: make(map[string]int, len(songs)),
	}
	for _, song := range songs {
		if _, dup := s.index[song.ID]; dup {
			continue
		}
		s.index[song.ID] = len(s.songs)
		s.songs = append(s.songs, song)
	}
	return s
}

// All returns a copy of every song in catalog order.
func (s *Store) All() []core.Song {
	return append([]core.Song(nil), s.songs...)
}

// Len returns the number of songs.
func (s *Store) Len() int {
	return len(s.songs)
}

// At returns the song at position i.
func (s *Store) At(i int) core.Song {
	return s.songs[i]
}

// Get looks a song up by id.
func (s *Store) Get(id string) (core.Song, bool) {
	i, ok := s.index[id]
	if !ok {
		return core.Song{}, false
	}
	return s.songs[i], true
}

// Index returns the catalog position of id, or -1.
func (s *Store) Index(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// ByArtist returns songs whose artist contains name, ignoring case.
func (s *Store) ByArtist(name string) []core.Song {
	return s.filter(func(song core.Song) bool {
		return core.ContainsFold(song.Artist, name)
	})
}

// ByGenre returns songs whose genre contains mood, ignoring case.
func (s *Store) ByGenre(mood string) []core.Song {
	return s.filter(func(song core.Song) bool {
		return core.ContainsFold(song.Genre, mood)
	})
}

// Search matches query against name, artist, album and genre.
// Suggestions are name or artist prefix matches, at most MaxSuggestions.
func (s *Store) Search(query string) SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return SearchResult{}
	}

	var res SearchResult
	for _, song := range s.songs {
		name := strings.ToLower(song.Name)
		artist := strings.ToLower(song.Artist)

		if strings.Contains(name, q) || strings.Contains(artist, q) ||
			strings.Contains(strings.ToLower(song.Album), q) ||
			strings.Contains(strings.ToLower(song.Genre), q) {
			res.Results = append(res.Results, song)
		}
		if len(res.Suggestions) < MaxSuggestions &&
			(strings.HasPrefix(name, q) || strings.HasPrefix(artist, q)) {
			res.Suggestions = append(res.Suggestions, song)
		}
	}
	return res
}

func (s *Store) filter(keep func(core.Song) bool) []core.Song {
	var out []core.Song
	for _, song := range s.songs {
		if keep(song) {
			out = append(out, song)
		}
	}
	return out
}

var artistSeparator = regexp.MustCompile(`,|&|ft\.`)

// PrimaryArtist returns the first artist of a multi-artist string.
func PrimaryArtist(artist string) string {
	return strings.TrimSpace(artistSeparator.Split(artist, 2)[0])
}
