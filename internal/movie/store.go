package movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"reelcache/internal/config"
)

// Store is the movie cache repository backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the cache database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const movieColumns = "id, imdb_id, name, original_name, alternative_name, release_date, rating, vote_count, popularity, certification, overview, language, movie_type, adult, translated, url, last_refreshed_at, created_at"

// timestampFormat keeps a fixed-width fraction so stored timestamps order
// lexicographically; the monotonic guard in SaveMovie relies on that.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// MovieByID fetches a movie with its genre and poster collections, or nil
// when the id is not cached.
func (s *Store) MovieByID(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	return s.loadMovie(ctx, row, "get movie")
}

// MovieByIMDBID fetches a movie by its IMDb cross-reference id.
func (s *Store) MovieByIMDBID(ctx context.Context, imdbID string) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE imdb_id = ?`, imdbID)
	return s.loadMovie(ctx, row, "get movie by imdb id")
}

// MovieByNameYear fetches a movie by case-insensitive exact title, further
// filtered by release year when year is positive.
func (s *Store) MovieByNameYear(ctx context.Context, name string, year int) (*Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE name = ? COLLATE NOCASE`
	args := []any{name}
	if year > 0 {
		query += ` AND substr(release_date, 1, 4) = ?`
		args = append(args, strconv.Itoa(year))
	}
	query += ` ORDER BY id LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	return s.loadMovie(ctx, row, "get movie by name")
}

// GenreByID returns the shared genre row, or nil when it does not exist.
func (s *Store) GenreByID(ctx context.Context, id int64) (*Genre, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id)
	var genre Genre
	err := row.Scan(&genre.ID, &genre.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return &genre, nil
}

// SaveMovie upserts the movie row together with its genre references and any
// new posters in a single transaction. Partial merges are never visible to
// concurrent readers.
func (s *Store) SaveMovie(ctx context.Context, m *Movie) error {
	if m == nil {
		return errors.New("movie is nil")
	}
	if m.ID == 0 {
		return errors.New("movie id is required")
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.LastRefreshedAt.IsZero() {
		m.LastRefreshedAt = m.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO movies (`+movieColumns+`)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
            imdb_id = excluded.imdb_id,
            name = excluded.name,
            original_name = excluded.original_name,
            alternative_name = excluded.alternative_name,
            release_date = excluded.release_date,
            rating = excluded.rating,
            vote_count = excluded.vote_count,
            popularity = excluded.popularity,
            certification = excluded.certification,
            overview = excluded.overview,
            language = excluded.language,
            movie_type = excluded.movie_type,
            adult = excluded.adult,
            translated = excluded.translated,
            url = excluded.url,
            last_refreshed_at = max(movies.last_refreshed_at, excluded.last_refreshed_at)`,
		m.ID,
		nullableString(m.IMDBID),
		nullableString(m.Name),
		nullableString(m.OriginalName),
		nullableString(m.AlternativeName),
		nullableDate(m.ReleaseDate),
		m.Rating,
		m.VoteCount,
		m.Popularity,
		nullableString(m.Certification),
		nullableString(m.Overview),
		nullableString(m.Language),
		nullableString(m.MovieType),
		boolToInt(m.Adult),
		boolToInt(m.Translated),
		nullableString(m.URL),
		m.LastRefreshedAt.UTC().Format(timestampFormat),
		m.CreatedAt.UTC().Format(timestampFormat),
	)
	if err != nil {
		return fmt.Errorf("upsert movie: %w", err)
	}

	for _, genre := range m.Genres {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO genres (id, name) VALUES (?, ?)
             ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
			genre.ID, genre.Name,
		); err != nil {
			return fmt.Errorf("upsert genre %d: %w", genre.ID, err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
			m.ID, genre.ID,
		); err != nil {
			return fmt.Errorf("link genre %d: %w", genre.ID, err)
		}
	}

	for _, poster := range m.Posters {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO posters (movie_id, size, type, remote_url, local_path)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT(movie_id, remote_url) DO NOTHING`,
			m.ID,
			nullableString(poster.Size),
			nullableString(poster.Type),
			poster.RemoteURL,
			nullableString(poster.LocalPath),
		); err != nil {
			return fmt.Errorf("insert poster: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// SetPosterLocalPath records the materialized file for a poster. It opens its
// own transaction scope so asset code never relies on an ambient one.
func (s *Store) SetPosterLocalPath(ctx context.Context, posterID int64, localPath string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE posters SET local_path = ? WHERE id = ?`, localPath, posterID)
	if err != nil {
		return fmt.Errorf("set poster path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("poster %d not found", posterID)
	}
	return nil
}

// FindMemo returns the movie id memoized for a normalized free-text query.
func (s *Store) FindMemo(ctx context.Context, normalizedQuery string) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT movie_id FROM search_memos WHERE query = ?`, normalizedQuery)
	var movieID int64
	err := row.Scan(&movieID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find memo: %w", err)
	}
	return movieID, true, nil
}

// SaveMemo upserts a search memo; a query resolves to exactly one record at
// a time.
func (s *Store) SaveMemo(ctx context.Context, normalizedQuery string, movieID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO search_memos (query, movie_id) VALUES (?, ?)
         ON CONFLICT(query) DO UPDATE SET movie_id = excluded.movie_id`,
		normalizedQuery, movieID,
	)
	if err != nil {
		return fmt.Errorf("save memo: %w", err)
	}
	return nil
}

// Stats reports row counts per table for diagnostics.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, 4)
	for _, table := range []string{"movies", "genres", "posters", "search_memos"} {
		var count int64
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table)
		if err := row.Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

// Clear removes every cached row.
func (s *Store) Clear(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM search_memos`,
		`DELETE FROM posters`,
		`DELETE FROM movie_genres`,
		`DELETE FROM genres`,
		`DELETE FROM movies`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	return nil
}

func (s *Store) loadMovie(ctx context.Context, row *sql.Row, operation string) (*Movie, error) {
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	// Collections are resolved eagerly: the record outlives any transaction
	// once it is handed to the caller.
	if m.Genres, err = s.genresForMovie(ctx, m.ID); err != nil {
		return nil, err
	}
	if m.Posters, err = s.postersForMovie(ctx, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) genresForMovie(ctx context.Context, movieID int64) ([]Genre, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT g.id, g.name FROM genres g
         JOIN movie_genres mg ON mg.genre_id = g.id
         WHERE mg.movie_id = ? ORDER BY g.id`,
		movieID,
	)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var genre Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

func (s *Store) postersForMovie(ctx context.Context, movieID int64) ([]Poster, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, movie_id, size, type, remote_url, local_path
         FROM posters WHERE movie_id = ? ORDER BY id`,
		movieID,
	)
	if err != nil {
		return nil, fmt.Errorf("query posters: %w", err)
	}
	defer rows.Close()

	var posters []Poster
	for rows.Next() {
		var (
			poster    Poster
			size      sql.NullString
			kind      sql.NullString
			localPath sql.NullString
		)
		if err := rows.Scan(&poster.ID, &poster.MovieID, &size, &kind, &poster.RemoteURL, &localPath); err != nil {
			return nil, err
		}
		poster.Size = size.String
		poster.Type = kind.String
		poster.LocalPath = localPath.String
		posters = append(posters, poster)
	}
	return posters, rows.Err()
}

func scanMovie(scanner interface{ Scan(dest ...any) error }) (*Movie, error) {
	var (
		id              int64
		imdbID          sql.NullString
		name            sql.NullString
		originalName    sql.NullString
		alternativeName sql.NullString
		releaseDate     sql.NullString
		rating          float64
		voteCount       int64
		popularity      float64
		certification   sql.NullString
		overview        sql.NullString
		languageCode    sql.NullString
		movieType       sql.NullString
		adult           int
		translated      int
		homepage        sql.NullString
		refreshedRaw    string
		createdRaw      string
	)

	if err := scanner.Scan(
		&id,
		&imdbID,
		&name,
		&originalName,
		&alternativeName,
		&releaseDate,
		&rating,
		&voteCount,
		&popularity,
		&certification,
		&overview,
		&languageCode,
		&movieType,
		&adult,
		&translated,
		&homepage,
		&refreshedRaw,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	m := &Movie{
		ID:              id,
		IMDBID:          imdbID.String,
		Name:            name.String,
		OriginalName:    originalName.String,
		AlternativeName: alternativeName.String,
		Rating:          rating,
		VoteCount:       voteCount,
		Popularity:      popularity,
		Certification:   certification.String,
		Overview:        overview.String,
		Language:        languageCode.String,
		MovieType:       movieType.String,
		Adult:           adult != 0,
		Translated:      translated != 0,
		URL:             homepage.String,
	}
	if releaseDate.Valid && releaseDate.String != "" {
		if released, err := time.Parse("2006-01-02", releaseDate.String); err == nil {
			m.ReleaseDate = &released
		}
	}
	if refreshed, err := time.Parse(time.RFC3339Nano, refreshedRaw); err == nil {
		m.LastRefreshedAt = refreshed
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		m.CreatedAt = created
	}
	return m, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format("2006-01-02")
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
