package recommend

import (
	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
)

// SimilarLimit caps SimilarTo results.
const SimilarLimit = 10

// SimilarTo returns up to SimilarLimit songs sharing song's exact genre or
// exact artist, in an order drawn from rnd.
func SimilarTo(songs []core.Song, song core.Song, rnd core.RandFunc) []core.Song {
	var matches []core.Song
	for _, s := range songs {
		if s.ID == song.ID {
			continue
		}
		if s.Genre == song.Genre || s.Artist == song.Artist {
			matches = append(matches, s)
		}
	}

	Shuffle(matches, rnd)
	if len(matches) > SimilarLimit {
		matches = matches[:SimilarLimit]
	}
	return matches
}

// Personalized picks songs sharing a genre or primary artist with the
// listener's liked and recent songs, excluding those songs themselves.
// With no liked or recent songs it returns Trending.
func Personalized(songs, liked, recent []core.Song, rnd core.RandFunc) []core.Song {
	if len(liked) == 0 && len(recent) == 0 {
		return Trending(songs)
	}

	genres := make(map[string]bool)
	artists := make(map[string]bool)
	known := make(map[string]bool)
	for _, list := range [][]core.Song{liked, recent} {
		for _, s := range list {
			genres[s.Genre] = true
			artists[catalog.PrimaryArtist(s.Artist)] = true
			known[s.ID] = true
		}
	}

	var out []core.Song
	for _, s := range songs {
		if known[s.ID] {
			continue
		}
		if genres[s.Genre] || artists[catalog.PrimaryArtist(s.Artist)] {
			out = append(out, s)
		}
	}

	Shuffle(out, rnd)
	if len(out) > Limit {
		out = out[:Limit]
	}
	return out
}

// Shuffle permutes songs in place (Fisher-Yates) using rnd.
func Shuffle(songs []core.Song, rnd core.RandFunc) {
	for i := len(songs) - 1; i > 0; i-- {
		j := rnd(i + 1)
		songs[i], songs[j] = songs[j], songs[i]
	}
}
