package recommend

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/tessro/euphony/internal/catalog"
	"github.com/tessro/euphony/internal/core"
)

const (
	// Limit is the length of every recommendation list.
	Limit = 20
	// ExcludeRecent is how many history entries are never recommended back.
	ExcludeRecent = 20

	artistBonus   = 5
	genreBonus    = 3
	languageBonus = 2
	baseYear      = 2000
)

// Scored pairs a song with its score.
type Scored struct {
	Song  core.Song `json:"song"`
	Score float64   `json:"score"`
}

// Score ranks catalog against history and returns the top Limit songs.
// The result depends only on its inputs. An empty history yields nil;
// callers show Trending instead.
func Score(songs []core.Song, history []core.Song) []core.Song {
	ranked := Rank(songs, history)
	if ranked == nil {
		return nil
	}
	out := make([]core.Song, len(ranked))
	for i, r := range ranked {
		out[i] = r.Song
	}
	return out
}

// Rank is Score with the scores attached.
func Rank(songs []core.Song, history []core.Song) []Scored {
	if len(history) == 0 {
		return nil
	}

	profile := BuildProfile(history)

	exclude := make(map[string]bool, ExcludeRecent)
	for _, s := range history[:min(len(history), ExcludeRecent)] {
		exclude[s.ID] = true
	}

	scored := make([]Scored, 0, len(songs))
	for _, song := range songs {
		if exclude[song.ID] {
			continue
		}
		scored = append(scored, Scored{Song: song, Score: scoreSong(profile, song)})
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(scored) > Limit {
		scored = scored[:Limit]
	}
	return scored
}

func scoreSong(p Profile, song core.Song) float64 {
	var score float64
	if p.hasArtist(catalog.PrimaryArtist(song.Artist)) {
		score += artistBonus
	}
	if p.hasGenre(song.Genre) {
		score += genreBonus
	}
	if p.hasLanguage(song.Language) {
		score += languageBonus
	}

	year, ok := ParseYear(song.ReleaseYear)
	if !ok {
		year = baseYear
	}
	return score + float64(year-baseYear)/100
}

// Trending returns the newest Limit songs. Songs without a parseable year sort last.
func Trending(songs []core.Song) []core.Song {
	sorted := slices.Clone(songs)
	slices.SortStableFunc(sorted, func(a, b core.Song) int {
		ya, _ := ParseYear(a.ReleaseYear)
		yb, _ := ParseYear(b.ReleaseYear)
		return cmp.Compare(yb, ya)
	})
	if len(sorted) > Limit {
		sorted = sorted[:Limit]
	}
	return sorted
}

// ParseYear reads the leading integer of s, so "2019 (Remaster)" is 2019.
// Zero is treated as unparseable.
func ParseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
