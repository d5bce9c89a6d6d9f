// Package recommend ranks catalog songs against a listener's history.
package recommend

import (
	"cmp"
	"slices"

	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
)

// Profile limits.
const (
	TopArtists   = 5
	TopGenres    = 3
	TopLanguages = 2
)

// Weight is a feature value with its summed recency weight.
type Weight struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
}

// Profile is the listener's preferred artists, genres and languages, strongest first.
type Profile struct {
	Artists   []Weight `json:"artists"`
	Genres    []Weight `json:"genres"`
	Languages []Weight `json:"languages"`
}

// BuildProfile weighs history (most recent first). The entry at index i of
// N contributes 1 + (N-i)/N. Ties keep first-seen order.
func BuildProfile(history []core.Song) Profile {
	artists, genres, languages := newTally(), newTally(), newTally()

	n := float64(len(history))
	for i, song := range history {
		w := 1 + (n-float64(i))/n
		artists.add(catalog.PrimaryArtist(song.Artist), w)
		genres.add(song.Genre, w)
		languages.add(song.Language, w)
	}

	return Profile{
		Artists:   artists.top(TopArtists),
		Genres:    genres.top(TopGenres),
		Languages: languages.top(TopLanguages),
	}
}

func (p Profile) hasArtist(v string) bool   { return contains(p.Artists, v) }
func (p Profile) hasGenre(v string) bool    { return contains(p.Genres, v) }
func (p Profile) hasLanguage(v string) bool { return contains(p.Languages, v) }

func contains(ws []Weight, v string) bool {
	return slices.ContainsFunc(ws, func(w Weight) bool { return w.Value == v })
}

// tally sums weights per value, remembering insertion order.
type tally struct {
	pos     map[string]int
	entries []Weight
}

func newTally() *tally {
	return &tally{pos: make(map[string]int)}
}

func (t *tally) add(v string, w float64) {
	if i, ok := t.pos[v]; ok {
		t.entries[i].Weight += w
		return
	}
	t.pos[v] = len(t.entries)
	t.entries = append(t.entries, Weight{Value: v, Weight: w})
}

func (t *tally) top(n int) []Weight {
	sorted := slices.Clone(t.entries)
	slices.SortStableFunc(sorted, func(a, b Weight) int {
		return cmp.Compare(b.Weight, a.Weight)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
