package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tessro/euphony/internal/core"
	"github.com/tessro/euphony/internal/errors"
)

// CSV column headers, matched case-insensitively.
const (
	colName     = "song name"
	colArtist   = "artist"
	colAlbum    = "album"
	colYear     = "year of release"
	colMood     = "mood category"
	colLanguage = "language"
)

// Placeholders for missing optional columns.
const (
	UnknownAlbum    = "Unknown Album"
	UnknownYear     = "Unknown Year"
	UnknownGenre    = "Unknown Genre"
	UnknownLanguage = "Unknown Language"
)

// LoadCSV parses a song CSV. Rows without a song name or artist are skipped
// and reported in the result's Errors. rnd supplies durations in [120,240).
func LoadCSV(r io.Reader, rnd core.RandFunc) (*errors.PartialResult[[]core.Song], error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("CSV header missing %q column", "Song Name")
	}
	if _, ok := cols[colArtist]; !ok {
		return nil, fmt.Errorf("CSV header missing %q column", "Artist")
	}

	field := func(record []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &errors.PartialResult[[]core.Song]{}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.AddError(fmt.Errorf("row %d: %w", row, err))
			continue
		}

		name, artist := field(record, colName), field(record, colArtist)
		if name == "" || artist == "" {
			result.AddError(fmt.Errorf("row %d: missing song name or artist", row))
			continue
		}

		result.Data = append(result.Data, core.Song{
			ID:          fmt.Sprintf("song-csv-%d", len(result.Data)),
			Name:        name,
			Artist:      artist,
			Album:       orDefault(field(record, colAlbum), UnknownAlbum),
			ReleaseYear: orDefault(field(record, colYear), UnknownYear),
			Genre:       orDefault(field(record, colMood), UnknownGenre),
			Language:    orDefault(field(record, colLanguage), UnknownLanguage),
			Duration:    120 + rnd(120),
		})
	}

	return result, nil
}

// Merge concatenates song lists, keeping the first song for each artist and name pair.
func Merge(lists ...[]core.Song) []core.Song {
	seen := make(map[string]bool)
	var out []core.Song
	for _, list := range lists {
		for _, song := range list {
			key := song.Artist + "-" + song.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, song)
		}
	}
	return out
}

// LoadFile builds a catalog from the CSV at path merged with the generated
// dataset. A missing or unreadable file falls back to the generated dataset.
func LoadFile(path string, rnd core.RandFunc, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	generated := Generate(rnd)
	if path == "" {
		return New(generated)
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("catalog file unavailable, using generated songs", "path", path, "error", err)
		return New(generated)
	}
	defer f.Close()

	result, err := LoadCSV(f, rnd)
	if err != nil {
		logger.Warn("catalog file unreadable, using generated songs", "path", path, "error", err)
		return New(generated)
	}
	if result.HasErrors() {
		logger.Warn("skipped catalog rows", "path", path, "count", len(result.Errors))
		logger.Debug("catalog row errors", "errors", result.ErrorSummary())
	}

	logger.Debug("loaded catalog", "path", path, "csv", len(result.Data), "generated", len(generated))
	return New(Merge(result.Data, generated))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
