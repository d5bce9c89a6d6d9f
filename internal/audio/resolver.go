package audio

import (
	"fmt"

	"github.com/tessro/euphony/internal/core"
)

// SamplePoolSize is the number of bundled sample tracks.
const SamplePoolSize = 9

const samplePattern = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-%d.mp3"

// Resolve maps a song to its resource. A song's own preview URL wins;
// otherwise the digits of its id select one of the sample tracks, so the
// same song always maps to the same audio.
func Resolve(song core.Song) ResourceRef {
	ref := ResourceRef{URL: song.PreviewURL, Duration: song.EffectiveDuration()}
	if ref.URL == "" {
		ref.URL = SampleURL(sampleIndex(song.ID))
	}
	return ref
}

// SampleURL returns the URL of sample track i (0-based).
func SampleURL(i int) string {
	return fmt.Sprintf(samplePattern, i+1)
}

// sampleIndex reduces the decimal digits of id modulo SamplePoolSize.
func sampleIndex(id string) int {
	n := 0
	for _, r := range id {
		if r >= '0' && r <= '9' {
			n = (n*10 + int(r-'0')) % SamplePoolSize
		}
	}
	return n
}
