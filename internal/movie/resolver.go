package movie

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"reelcache/internal/logging"
	"reelcache/internal/tmdb"
)

// RemoteClient is the provider surface the resolver depends on. *tmdb.Client
// satisfies it; tests substitute a fake that counts calls.
type RemoteClient interface {
	MovieDetails(ctx context.Context, movieID int64) (*tmdb.Payload, error)
	FindByIMDBID(ctx context.Context, imdbID string) (*tmdb.Payload, error)
	SearchMovie(ctx context.Context, query string) (*tmdb.Payload, error)
}

// Cache is the persistence surface the resolver depends on. *Store satisfies
// it.
type Cache interface {
	GenreLookup
	MovieByID(ctx context.Context, id int64) (*Movie, error)
	MovieByIMDBID(ctx context.Context, imdbID string) (*Movie, error)
	MovieByNameYear(ctx context.Context, name string, year int) (*Movie, error)
	SaveMovie(ctx context.Context, m *Movie) error
	FindMemo(ctx context.Context, normalizedQuery string) (int64, bool, error)
	SaveMemo(ctx context.Context, normalizedQuery string, movieID int64) error
}

// TitleParser splits free text into a probable title and release year.
type TitleParser func(text string) (title string, year int)

// Criteria identifies the movie a caller wants. At least one of TMDBID,
// IMDBID, Title, or FreeText must be set.
type Criteria struct {
	TMDBID     int64
	IMDBID     string
	Title      string
	Year       int
	FreeText   string
	CachedOnly bool
}

func (c Criteria) empty() bool {
	return c.TMDBID <= 0 && c.IMDBID == "" && c.Title == ""
}

// Resolver answers movie lookups from the cache, falling back to the remote
// provider and refreshing stale records in place.
type Resolver struct {
	store  Cache
	remote RemoteClient
	parse  TitleParser
	logger *slog.Logger
	now    func() time.Time

	refreshGroup singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver wires a resolver over the cache and remote provider. parser may
// be nil when callers never pass free text.
func NewResolver(store Cache, remote RemoteClient, parser TitleParser, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:  store,
		remote: remote,
		parse:  parser,
		logger: logging.NewComponentLogger(logger, "resolver"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup resolves the criteria to a cached movie record, creating or
// refreshing it from the provider as needed. Cached-only lookups never touch
// the network.
func (r *Resolver) Lookup(ctx context.Context, criteria Criteria) (*Movie, error) {
	if criteria.Title == "" && criteria.TMDBID <= 0 && criteria.IMDBID == "" && criteria.FreeText != "" && r.parse != nil {
		criteria.Title, criteria.Year = r.parse(criteria.FreeText)
	}
	if criteria.empty() {
		return nil, ErrInvalidCriteria
	}

	log := r.logger.With(logging.String(logging.FieldLookupID, uuid.NewString()))
	log.Debug("movie lookup",
		logging.Int64("tmdb_id", criteria.TMDBID),
		logging.String("imdb_id", criteria.IMDBID),
		logging.String("title", criteria.Title),
		logging.Int("year", criteria.Year),
		logging.Bool("cached_only", criteria.CachedOnly))

	cached, err := r.findCached(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		if criteria.CachedOnly || !IsStale(cached, r.now()) {
			return cached, nil
		}
		return r.refresh(ctx, log, cached)
	}

	if criteria.CachedOnly {
		return nil, ErrNotFoundInCache
	}

	switch {
	case criteria.TMDBID > 0:
		return r.createFromDetails(ctx, log, criteria.TMDBID, "")
	case criteria.IMDBID != "":
		return r.createFromIMDBID(ctx, log, criteria.IMDBID)
	default:
		return r.createFromSearch(ctx, log, criteria)
	}
}

// findCached checks identifiers strongest-first: tmdb id, imdb id, exact
// name+year, then the search memo for the normalized query.
func (r *Resolver) findCached(ctx context.Context, criteria Criteria) (*Movie, error) {
	if criteria.TMDBID > 0 {
		return r.store.MovieByID(ctx, criteria.TMDBID)
	}
	if criteria.IMDBID != "" {
		return r.store.MovieByIMDBID(ctx, criteria.IMDBID)
	}

	m, err := r.store.MovieByNameYear(ctx, criteria.Title, criteria.Year)
	if err != nil || m != nil {
		return m, err
	}

	movieID, ok, err := r.store.FindMemo(ctx, NormalizeQuery(criteria.Title, criteria.Year))
	if err != nil || !ok {
		return nil, err
	}
	return r.store.MovieByID(ctx, movieID)
}

// refresh re-fetches a stale record. Concurrent refreshes of the same id are
// coalesced into one provider round-trip. Any failure to complete the
// round-trip degrades to the stale record untouched.
func (r *Resolver) refresh(ctx context.Context, log *slog.Logger, cached *Movie) (*Movie, error) {
	result, err, _ := r.refreshGroup.Do(strconv.FormatInt(cached.ID, 10), func() (any, error) {
		payload, err := r.remote.MovieDetails(ctx, cached.ID)
		if err != nil {
			return nil, err
		}
		if err := Merge(ctx, cached, payload, r.store, r.now()); err != nil {
			return nil, err
		}
		if err := r.store.SaveMovie(ctx, cached); err != nil {
			return nil, err
		}
		// Reload so posters gained by the merge carry their row ids.
		reloaded, err := r.store.MovieByID(ctx, cached.ID)
		if err != nil {
			return nil, err
		}
		if reloaded == nil {
			return cached, nil
		}
		return reloaded, nil
	})
	if err != nil {
		if errors.Is(err, tmdb.ErrUnavailable) || errors.Is(err, ErrNoRemoteMatch) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn("refresh failed, serving stale record",
				logging.Int64(logging.FieldMovieID, cached.ID),
				logging.Error(err))
			return cached, nil
		}
		return nil, err
	}

	refreshed := result.(*Movie)
	log.Info("movie refreshed", logging.Int64(logging.FieldMovieID, refreshed.ID))
	return refreshed, nil
}

// createFromDetails builds a new record from a full detail fetch. imdbID, when
// known from a prior find, is kept even if the detail payload omits it.
func (r *Resolver) createFromDetails(ctx context.Context, log *slog.Logger, movieID int64, imdbID string) (*Movie, error) {
	payload, err := r.remote.MovieDetails(ctx, movieID)
	if err != nil {
		return nil, remoteMiss(err)
	}

	m := &Movie{ID: movieID, IMDBID: imdbID}
	if err := r.mergeAndSave(ctx, m, payload); err != nil {
		return nil, err
	}

	log.Info("movie cached", logging.Int64(logging.FieldMovieID, m.ID), logging.String("name", m.Name))
	return r.store.MovieByID(ctx, m.ID)
}

func (r *Resolver) createFromIMDBID(ctx context.Context, log *slog.Logger, imdbID string) (*Movie, error) {
	payload, err := r.remote.FindByIMDBID(ctx, imdbID)
	if err != nil {
		return nil, remoteMiss(err)
	}
	if payload == nil || payload.ID == 0 {
		return nil, ErrNoRemoteMatch
	}

	// The imdb id may point at a record already cached under its tmdb id.
	if cached, err := r.store.MovieByID(ctx, payload.ID); err != nil {
		return nil, err
	} else if cached != nil {
		if cached.IMDBID == "" {
			cached.IMDBID = imdbID
			if err := r.store.SaveMovie(ctx, cached); err != nil {
				return nil, err
			}
		}
		if IsStale(cached, r.now()) {
			return r.refresh(ctx, log, cached)
		}
		return cached, nil
	}

	return r.createFromDetails(ctx, log, payload.ID, imdbID)
}

func (r *Resolver) createFromSearch(ctx context.Context, log *slog.Logger, criteria Criteria) (*Movie, error) {
	query := NormalizeQuery(criteria.Title, criteria.Year)
	log.Debug("searching provider", logging.String(logging.FieldQuery, query))

	payload, err := r.remote.SearchMovie(ctx, query)
	if err != nil {
		return nil, remoteMiss(err)
	}
	if payload == nil || payload.ID == 0 {
		return nil, ErrNoRemoteMatch
	}

	// The best match may already be cached under a different title spelling.
	m, err := r.store.MovieByID(ctx, payload.ID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		if m, err = r.createFromDetails(ctx, log, payload.ID, ""); err != nil {
			return nil, err
		}
	}

	// Memoize only spellings that do not already match the canonical name;
	// exact-name queries are answered by the name index.
	if !strings.EqualFold(strings.TrimSpace(criteria.Title), m.Name) {
		if err := r.store.SaveMemo(ctx, query, m.ID); err != nil {
			return nil, err
		}
		log.Debug("search memo recorded",
			logging.String(logging.FieldQuery, query),
			logging.Int64(logging.FieldMovieID, m.ID))
	}
	return m, nil
}

func (r *Resolver) mergeAndSave(ctx context.Context, m *Movie, payload *tmdb.Payload) error {
	if err := Merge(ctx, m, payload, r.store, r.now()); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now().UTC()
	}
	if err := r.store.SaveMovie(ctx, m); err != nil {
		return fmt.Errorf("persist movie %d: %w", m.ID, err)
	}
	return nil
}

// remoteMiss maps a transient provider failure on a record with no cached
// fallback to a no-match error, preserving the transport cause for callers
// that inspect the chain.
func remoteMiss(err error) error {
	if errors.Is(err, tmdb.ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrNoRemoteMatch, err)
	}
	return err
}
