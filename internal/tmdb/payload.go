package tmdb

import "strconv"

// Payload is the provider's generic movie payload. Scalar fields are
// pointers: a nil field means the provider did not supply a value, and the
// merge engine leaves the cached field untouched.
type Payload struct {
	ID              int64
	IMDBID          *string
	Name            *string
	OriginalName    *string
	AlternativeName *string
	ReleaseDate     *string
	Rating          *float64
	VoteCount       *int64
	Popularity      *float64
	Certification   *string
	Overview        *string
	Language        *string
	MovieType       *string
	Adult           *bool
	Translated      *bool
	URL             *string
	Genres          []GenreEntry
	Posters         []PosterEntry
}

// GenreEntry is a genre reference within a payload.
type GenreEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PosterEntry is a poster reference within a payload. URL is absolute.
type PosterEntry struct {
	URL  string
	Size string
	Type string
}

// movieDoc models the TMDB movie details response, with images and release
// certifications appended.
type movieDoc struct {
	ID               int64        `json:"id"`
	IMDBID           string       `json:"imdb_id"`
	Title            string       `json:"title"`
	OriginalTitle    string       `json:"original_title"`
	ReleaseDate      string       `json:"release_date"`
	VoteAverage      *float64     `json:"vote_average"`
	VoteCount        *int64       `json:"vote_count"`
	Popularity       *float64     `json:"popularity"`
	Overview         string       `json:"overview"`
	OriginalLanguage string       `json:"original_language"`
	Adult            *bool        `json:"adult"`
	Homepage         string       `json:"homepage"`
	Genres           []GenreEntry `json:"genres"`
	Images           struct {
		Posters []imageDoc `json:"posters"`
	} `json:"images"`
	Releases struct {
		Countries []releaseDoc `json:"countries"`
	} `json:"releases"`
}

type imageDoc struct {
	FilePath string `json:"file_path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type releaseDoc struct {
	ISO31661      string `json:"iso_3166_1"`
	Certification string `json:"certification"`
}

// searchDoc models one entry of a TMDB search or find response.
type searchDoc struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	VoteAverage *float64 `json:"vote_average"`
	VoteCount   *int64   `json:"vote_count"`
	Popularity  *float64 `json:"popularity"`
	Overview    string   `json:"overview"`
	Adult       *bool    `json:"adult"`
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func (c *Client) payloadFromMovieDoc(doc movieDoc) *Payload {
	movieType := "movie"
	payload := &Payload{
		ID:           doc.ID,
		IMDBID:       strPtr(doc.IMDBID),
		Name:         strPtr(doc.Title),
		OriginalName: strPtr(doc.OriginalTitle),
		ReleaseDate:  strPtr(doc.ReleaseDate),
		Rating:       doc.VoteAverage,
		VoteCount:    doc.VoteCount,
		Popularity:   doc.Popularity,
		Overview:     strPtr(doc.Overview),
		Language:     strPtr(doc.OriginalLanguage),
		MovieType:    &movieType,
		Adult:        doc.Adult,
		URL:          strPtr(doc.Homepage),
		Genres:       doc.Genres,
	}

	for _, country := range doc.Releases.Countries {
		if country.ISO31661 == "US" && country.Certification != "" {
			payload.Certification = strPtr(country.Certification)
			break
		}
	}

	for _, image := range doc.Images.Posters {
		if image.FilePath == "" {
			continue
		}
		payload.Posters = append(payload.Posters, PosterEntry{
			URL:  c.imageBaseURL + image.FilePath,
			Size: posterSize(image),
			Type: "poster",
		})
	}

	return payload
}

func payloadFromSearchDoc(doc searchDoc) *Payload {
	return &Payload{
		ID:          doc.ID,
		Name:        strPtr(doc.Title),
		ReleaseDate: strPtr(doc.ReleaseDate),
		Rating:      doc.VoteAverage,
		VoteCount:   doc.VoteCount,
		Popularity:  doc.Popularity,
		Overview:    strPtr(doc.Overview),
		Adult:       doc.Adult,
	}
}

func posterSize(image imageDoc) string {
	if image.Width <= 0 || image.Height <= 0 {
		return "original"
	}
	return strconv.Itoa(image.Width) + "x" + strconv.Itoa(image.Height)
}
