package core

// Playlist is a named, user-created song collection with no duplicate ids.
type Playlist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Songs []Song `json:"songs"`
}

// Contains reports whether the playlist holds a song with the given id.
func (p *Playlist) Contains(songID string) bool {
	return IndexOf(p.Songs, songID) >= 0
}

// Clone returns a deep copy of the playlist.
func (p Playlist) Clone() Playlist {
	p.Songs = append([]Song(nil), p.Songs...)
	return p
}
