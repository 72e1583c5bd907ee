package model

// PlaylistEntry is a single video discovered in a playlist
type PlaylistEntry struct {
	VideoID string
	Title   string
	URL     string
}

// Playlist is the expanded content of a playlist URL
type Playlist struct {
	ID      string
	URL     string
	Entries []PlaylistEntry
}

// Submissions fans the playlist out into one submission per entry
func (p *Playlist) Submissions(quality Quality, dir string) []Submission {
	subs := make([]Submission, 0, len(p.Entries))
	for _, e := range p.Entries {
		subs = append(subs, Submission{URL: e.URL, Quality: quality, Directory: dir})
	}
	return subs
}
