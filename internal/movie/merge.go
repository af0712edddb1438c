package movie

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reelcache/internal/tmdb"
)

// GenreLookup resolves a genre id to the store-wide genre row, or (nil, nil)
// when no such row exists yet.
type GenreLookup interface {
	GenreByID(ctx context.Context, id int64) (*Genre, error)
}

// Merge applies a provider payload onto a cached record. Scalars are
// overwritten only when the payload supplies a value; genre and poster
// collections are additive and deduplicated. On success the refresh
// timestamp is advanced to now even if nothing else changed, since a
// completed provider round-trip counts as checked.
//
// A payload without a usable name is rejected with ErrNoRemoteMatch and the
// record is left untouched.
func Merge(ctx context.Context, m *Movie, payload *tmdb.Payload, genres GenreLookup, now time.Time) error {
	if payload == nil {
		return ErrNoRemoteMatch
	}
	name := payloadName(payload)
	if name == "" {
		return ErrNoRemoteMatch
	}

	if m.ID == 0 && payload.ID != 0 {
		m.ID = payload.ID
	}

	m.Name = name
	setString(&m.IMDBID, payload.IMDBID)
	setString(&m.OriginalName, payload.OriginalName)
	setString(&m.AlternativeName, payload.AlternativeName)
	setString(&m.Certification, payload.Certification)
	setString(&m.Overview, payload.Overview)
	setString(&m.Language, payload.Language)
	setString(&m.MovieType, payload.MovieType)
	setString(&m.URL, payload.URL)
	if payload.Rating != nil {
		m.Rating = *payload.Rating
	}
	if payload.VoteCount != nil {
		m.VoteCount = *payload.VoteCount
	}
	if payload.Popularity != nil {
		m.Popularity = *payload.Popularity
	}
	if payload.Adult != nil {
		m.Adult = *payload.Adult
	}
	if payload.Translated != nil {
		m.Translated = *payload.Translated
	}
	if payload.ReleaseDate != nil && *payload.ReleaseDate != "" {
		released, err := time.Parse("2006-01-02", *payload.ReleaseDate)
		if err == nil {
			m.ReleaseDate = &released
		}
	}

	for _, entry := range payload.Posters {
		if entry.URL == "" || m.HasPoster(entry.URL) {
			continue
		}
		m.Posters = append(m.Posters, Poster{
			MovieID:   m.ID,
			Size:      entry.Size,
			Type:      entry.Type,
			RemoteURL: entry.URL,
		})
	}

	for _, entry := range payload.Genres {
		if entry.ID == 0 || m.HasGenre(entry.ID) {
			continue
		}
		genre, err := lookupGenre(ctx, genres, entry.ID)
		if err != nil {
			return fmt.Errorf("resolve genre %d: %w", entry.ID, err)
		}
		if genre == nil {
			genre = &Genre{ID: entry.ID, Name: entry.Name}
		}
		m.Genres = append(m.Genres, *genre)
	}

	m.LastRefreshedAt = now
	return nil
}

func lookupGenre(ctx context.Context, genres GenreLookup, id int64) (*Genre, error) {
	if genres == nil {
		return nil, nil
	}
	return genres.GenreByID(ctx, id)
}

func payloadName(payload *tmdb.Payload) string {
	if payload.Name != nil {
		return strings.TrimSpace(*payload.Name)
	}
	return ""
}

func setString(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = *src
	}
}
