package catalog

import (
	"testing"

	"github.com/tessro/euphony/internal/core"
)

func testSongs() []core.Song {
	return []core.Song{
		{ID: "1", Name: "Tum Hi Ho", Artist: "Arijit Singh", Album: "Aashiqui 2", Genre: "Romantic", Language: "Hindi"},
		{ID: "2", Name: "Shape of You", Artist: "Ed Sheeran", Album: "Divide", Genre: "Happy", Language: "English"},
		{ID: "3", Name: "Tum Se Hi", Artist: "Mohit Chauhan", Album: "Jab We Met", Genre: "Romantic", Language: "Hindi"},
		{ID: "4", Name: "Perfect", Artist: "Ed Sheeran & Beyonce", Album: "Divide", Genre: "Romantic Ballad", Language: "English"},
		{ID: "5", Name: "Levitating", Artist: "Dua Lipa ft. DaBaby", Album: "Future Nostalgia", Genre: "Party", Language: "English"},
	}
}

func TestNewDropsDuplicateIDs(t *testing.T) {
	songs := append(testSongs(), core.Song{ID: "1", Name: "Impostor"})
	s := New(songs)
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}
	got, ok := s.Get("1")
	if !ok || got.Name != "Tum Hi Ho" {
		t.Errorf("Get(1) = %q, %v, want first occurrence", got.Name, ok)
	}
	if s.Index("4") != 3 {
		t.Errorf("Index(4) = %d, want 3", s.Index("4"))
	}
	if s.Index("missing") != -1 {
		t.Errorf("Index(missing) = %d, want -1", s.Index("missing"))
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := New(testSongs())
	all := s.All()
	all[0].Name = "changed"
	if s.At(0).Name != "Tum Hi Ho" {
		t.Error("mutating All() result changed the store")
	}
}

func TestByArtistAndGenre(t *testing.T) {
	s := New(testSongs())

	if got := ids(s.ByArtist("ed sheeran")); got != "2,4" {
		t.Errorf("ByArtist(ed sheeran) = %s, want 2,4", got)
	}
	if got := ids(s.ByGenre("ROMANTIC")); got != "1,3,4" {
		t.Errorf("ByGenre(ROMANTIC) = %s, want 1,3,4", got)
	}
	if got := s.ByArtist("nobody"); len(got) != 0 {
		t.Errorf("ByArtist(nobody) = %d songs, want 0", len(got))
	}
}

func TestSearch(t *testing.T) {
	s := New(testSongs())

	tests := []struct {
		query       string
		results     string
		suggestions string
	}{
		{"tum", "1,3", "1,3"},
		{"divide", "2,4", ""},
		{"  party ", "5", ""},
		{"sheeran", "2,4", ""},
		{"ed", "2,4", "2,4"},
		{"", "", ""},
		{"   ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := s.Search(tt.query)
			if got := ids(res.Results); got != tt.results {
				t.Errorf("Results = %s, want %s", got, tt.results)
			}
			if got := ids(res.Suggestions); got != tt.suggestions {
				t.Errorf("Suggestions = %s, want %s", got, tt.suggestions)
			}
		})
	}
}

func TestSearchCapsSuggestions(t *testing.T) {
	var songs []core.Song
	for i := 0; i < 8; i++ {
		songs = append(songs, core.Song{ID: string(rune('a' + i)), Name: "Love " + string(rune('A'+i)), Artist: "X"})
	}
	res := New(songs).Search("love")
	if len(res.Results) != 8 {
		t.Errorf("len(Results) = %d, want 8", len(res.Results))
	}
	if len(res.Suggestions) != MaxSuggestions {
		t.Errorf("len(Suggestions) = %d, want %d", len(res.Suggestions), MaxSuggestions)
	}
}

func TestPrimaryArtist(t *testing.T) {
	tests := map[string]string{
		"Arijit Singh":          "Arijit Singh",
		"Ed Sheeran & Beyonce":  "Ed Sheeran",
		"Dua Lipa ft. DaBaby":   "Dua Lipa",
		"Vishal, Shekhar":       "Vishal",
		" Pritam ,Arijit Singh": "Pritam",
		"Vishal-Shekhar":        "Vishal-Shekhar",
		"":                      "",
	}
	for in, want := range tests {
		if got := PrimaryArtist(in); got != want {
			t.Errorf("PrimaryArtist(%q) = %q, want %q", in, got, want)
		}
	}
}

func ids(songs []core.Song) string {
	out := ""
	for i, s := range songs {
		if i > 0 {
			out += ","
		}
		out += s.ID
	}
	return out
}
