package recommend

import (
	"regexp"
	"strings"

	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
)

// Shelf sizes.
const (
	MoodShelfSize    = 20
	MaxArtistShelves = 10
	ArtistShelfSize  = 10
)

// MoodCategory is a home-screen shelf of songs for one mood.
type MoodCategory struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Songs []core.Song `json:"songs"`
}

// ArtistShelf is a home-screen shelf for one artist.
type ArtistShelf struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Songs       []core.Song `json:"songs"`
}

var moods = []struct{ id, name string }{
	{"romantic", "ROMANTIC"},
	{"sad", "SAD"},
	{"happy", "HAPPY"},
	{"energetic", "ENERGETIC"},
	{"party", "PARTY"},
	{"chill", "RELAXED"},
}

// ForMood returns the catalog songs whose genre contains mood.
func ForMood(store *catalog.Store, mood string) []core.Song {
	return store.ByGenre(mood)
}

// MoodCategories builds the six mood shelves. A song belongs to a mood when
// its genre contains the mood id or equals the mood name, ignoring case.
func MoodCategories(songs []core.Song) []MoodCategory {
	out := make([]MoodCategory, 0, len(moods))
	for _, m := range moods {
		cat := MoodCategory{ID: m.id, Name: m.name}
		for _, s := range songs {
			if len(cat.Songs) == MoodShelfSize {
				break
			}
			genre := strings.ToLower(s.Genre)
			if strings.Contains(genre, m.id) || genre == strings.ToLower(m.name) {
				cat.Songs = append(cat.Songs, s)
			}
		}
		out = append(out, cat)
	}
	return out
}

var whitespace = regexp.MustCompile(`\s+`)

// ArtistShelves returns shelves for the primary artists with the most songs.
func ArtistShelves(songs []core.Song) []ArtistShelf {
	counts := newTally()
	for _, s := range songs {
		counts.add(catalog.PrimaryArtist(s.Artist), 1)
	}

	top := counts.top(MaxArtistShelves)
	out := make([]ArtistShelf, 0, len(top))
	for _, w := range top {
		shelf := ArtistShelf{
			ID:          whitespace.ReplaceAllString(strings.ToLower(w.Value), "-"),
			Name:        w.Value,
			Description: "Artist",
		}
		for _, s := range songs {
			if len(shelf.Songs) == ArtistShelfSize {
				break
			}
			if core.ContainsFold(s.Artist, w.Value) {
				shelf.Songs = append(shelf.Songs, s)
			}
		}
		if len(shelf.Songs) > 0 {
			if shelf.Songs[0].Language == "Hindi" {
				shelf.Description = "Indian singer"
			} else {
				shelf.Description = "International artist"
			}
		}
		out = append(out, shelf)
	}
	return out
}
