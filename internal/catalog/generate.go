package catalog

import (
	"fmt"
	"strings"

	"github.com/tessro/euphony/internal/core"
)

// MaxGenerated caps the generated dataset.
const MaxGenerated = 500

// songsPerArtist is how many entries each generated artist gets.
const songsPerArtist = 25

var (
	generatedArtists = []string{
		"Arijit Singh", "Vishal Mishra", "Shreya Ghoshal", "Ed Sheeran",
		"Taylor Swift", "Justin Bieber", "The Weeknd", "Dua Lipa",
		"Neha Kakkar", "A.R. Rahman", "Atif Aslam", "Jubin Nautiyal",
		"Darshan Raval", "Pritam", "Vishal-Shekhar", "Amit Trivedi",
		"Diljit Dosanjh", "Armaan Malik", "Rihanna", "Coldplay",
	}

	knownTitles = map[string][]string{
		"Arijit Singh":   {"Tum Hi Ho", "Channa Mereya", "Raabta", "Gerua", "Kabira", "Ilahi", "Bolna", "Khairiyat", "Hawayein", "Zaalima"},
		"Vishal Mishra":  {"Kaise Hua", "Pehla Pyaar", "Manjha", "Aaj Bhi", "Tujhe Kitna Chahne Lage"},
		"Shreya Ghoshal": {"Sunn Raha Hai", "Teri Ore", "Barso Re", "Ghar More Pardesiya", "Deewani Mastani"},
		"Ed Sheeran":     {"Shape of You", "Perfect", "Photograph", "Thinking Out Loud", "Bad Habits", "Shivers"},
		"Taylor Swift":   {"Love Story", "Blank Space", "Shake It Off", "Cardigan", "Anti-Hero"},
		"The Weeknd":     {"Blinding Lights", "Starboy", "Save Your Tears", "The Hills"},
		"Dua Lipa":       {"Levitating", "New Rules", "Don't Start Now", "Physical"},
		"Coldplay":       {"Yellow", "Fix You", "Viva La Vida", "Paradise", "Clocks"},
		"Rihanna":        {"Diamonds", "Umbrella", "Stay", "Work", "Pon de Replay"},
	}

	generatedAlbums = []string{
		"Love Songs 2025", "Party Anthems", "Chill Vibes", "Romantic Hits",
		"Sad Songs Collection", "Energetic Beats", "Bollywood Classics",
		"Pop Sensations", "Dance Floor Hits", "Relaxing Melodies",
		"Road Trip Songs", "Workout Playlist", "Monsoon Melodies",
		"Summer Hits", "Winter Collection", "Wedding Songs",
		"Festive Celebrations", "Devotional Collection", "90s Nostalgia", "2000s Hits",
	}

	generatedMoods = []string{
		"Happy", "Sad", "Romantic", "Energetic", "Party", "Relaxed", "Chill",
		"Dance", "Devotional", "Workout", "Focus", "Motivational",
		"Nostalgic", "Patriotic", "Festive",
	}

	generatedYears = []string{"2020", "2021", "2022", "2023", "2024", "2025"}
)

// Generate returns the built-in dataset used when no CSV is configured.
// Album, mood, year and duration are drawn from rnd.
func Generate(rnd core.RandFunc) []core.Song {
	songs := make([]core.Song, 0, MaxGenerated)
	seen := make(map[string]bool)

	for _, artist := range generatedArtists {
		for _, title := range titlesFor(artist) {
			if len(songs) >= MaxGenerated {
				return songs
			}
			key := artist + "-" + title
			if seen[key] {
				continue
			}
			seen[key] = true

			songs = append(songs, core.Song{
				ID:          fmt.Sprintf("song-%d", len(songs)+1),
				Name:        title,
				Artist:      artist,
				Album:       generatedAlbums[rnd(len(generatedAlbums))],
				ReleaseYear: generatedYears[rnd(len(generatedYears))],
				Genre:       generatedMoods[rnd(len(generatedMoods))],
				Language:    languageFor(artist),
				Duration:    120 + rnd(120),
			})
		}
	}
	return songs
}

// titlesFor returns the known titles for artist padded with numbered fillers.
func titlesFor(artist string) []string {
	titles := append([]string(nil), knownTitles[artist]...)
	for i := len(titles); i < songsPerArtist; i++ {
		titles = append(titles, fmt.Sprintf("%s Song %d", artist, i+1))
	}
	return titles
}

func languageFor(artist string) string {
	if strings.Contains(artist, "Singh") || strings.Contains(artist, "Mishra") || strings.Contains(artist, "Rahman") {
		return "Hindi"
	}
	return "English"
}
