package movie

import "time"

// Movie is the canonical cached metadata record. ID is the TMDB identifier
// and never changes once assigned.
type Movie struct {
	ID              int64
	IMDBID          string
	Name            string
	OriginalName    string
	AlternativeName string
	ReleaseDate     *time.Time
	Rating          float64
	VoteCount       int64
	Popularity      float64
	Certification   string
	Overview        string
	Language        string
	MovieType       string
	Adult           bool
	Translated      bool
	URL             string
	Genres          []Genre
	Posters         []Poster
	LastRefreshedAt time.Time
	CreatedAt       time.Time
}

// Year derives the release year, or 0 when the release date is unknown.
func (m *Movie) Year() int {
	if m.ReleaseDate == nil {
		return 0
	}
	return m.ReleaseDate.Year()
}

// HasGenre reports whether the movie already references the genre id.
func (m *Movie) HasGenre(id int64) bool {
	for _, genre := range m.Genres {
		if genre.ID == id {
			return true
		}
	}
	return false
}

// HasPoster reports whether the movie already holds a poster for the URL.
func (m *Movie) HasPoster(remoteURL string) bool {
	for _, poster := range m.Posters {
		if poster.RemoteURL == remoteURL {
			return true
		}
	}
	return false
}

// Genre is shared across movies; a genre id maps to exactly one row
// store-wide.
type Genre struct {
	ID   int64
	Name string
}

// Poster is owned by exactly one movie. LocalPath is empty until the asset
// store materializes the image.
type Poster struct {
	ID        int64
	MovieID   int64
	Size      string
	Type      string
	RemoteURL string
	LocalPath string
}
