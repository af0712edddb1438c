package movie_test

import (
	"context"
	"testing"
	"time"

	"reelcache/internal/movie"
	"reelcache/internal/testsupport"
)

func newStore(t *testing.T) *movie.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return testsupport.MustOpenStore(t, cfg)
}

func sampleMovie() *movie.Movie {
	released := time.Date(2009, 8, 14, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	return &movie.Movie{
		ID:              17654,
		IMDBID:          "tt1136608",
		Name:            "District 9",
		OriginalName:    "District 9",
		ReleaseDate:     &released,
		Rating:          7.4,
		VoteCount:       11000,
		Popularity:      35.2,
		Certification:   "R",
		Overview:        "Aliens land in Johannesburg.",
		Language:        "en",
		MovieType:       "movie",
		URL:             "https://example.test/district-9",
		Genres:          []movie.Genre{{ID: 878, Name: "Science Fiction"}, {ID: 53, Name: "Thriller"}},
		Posters:         []movie.Poster{{MovieID: 17654, Size: "2000x3000", Type: "poster", RemoteURL: "https://img.test/d9.jpg"}},
		LastRefreshedAt: now,
		CreatedAt:       now,
	}
}

func TestSaveMovieRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	want := sampleMovie()
	if err := store.SaveMovie(ctx, want); err != nil {
		t.Fatalf("SaveMovie: %v", err)
	}

	got, err := store.MovieByID(ctx, want.ID)
	if err != nil {
		t.Fatalf("MovieByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected movie, got nil")
	}
	if got.Name != want.Name || got.IMDBID != want.IMDBID || got.Certification != want.Certification {
		t.Errorf("scalars = %q/%q/%q", got.Name, got.IMDBID, got.Certification)
	}
	if got.ReleaseDate == nil || !got.ReleaseDate.Equal(*want.ReleaseDate) {
		t.Errorf("release date = %v, want %v", got.ReleaseDate, want.ReleaseDate)
	}
	if len(got.Genres) != 2 || len(got.Posters) != 1 {
		t.Errorf("collections = %d genres, %d posters", len(got.Genres), len(got.Posters))
	}
	if got.Posters[0].ID == 0 {
		t.Error("poster id not assigned on load")
	}
	if !got.LastRefreshedAt.Equal(want.LastRefreshedAt) {
		t.Errorf("last refreshed = %v, want %v", got.LastRefreshedAt, want.LastRefreshedAt)
	}
}

func TestMovieLookupsReturnNilOnMiss(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if m, err := store.MovieByID(ctx, 999); err != nil || m != nil {
		t.Errorf("MovieByID miss = (%v, %v)", m, err)
	}
	if m, err := store.MovieByIMDBID(ctx, "tt0000000"); err != nil || m != nil {
		t.Errorf("MovieByIMDBID miss = (%v, %v)", m, err)
	}
	if m, err := store.MovieByNameYear(ctx, "Nothing", 1999); err != nil || m != nil {
		t.Errorf("MovieByNameYear miss = (%v, %v)", m, err)
	}
}

func TestMovieByNameYearCaseInsensitive(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.SaveMovie(ctx, sampleMovie()); err != nil {
		t.Fatalf("SaveMovie: %v", err)
	}

	got, err := store.MovieByNameYear(ctx, "dIsTrIcT 9", 2009)
	if err != nil {
		t.Fatalf("MovieByNameYear: %v", err)
	}
	if got == nil || got.ID != 17654 {
		t.Fatalf("case-insensitive lookup failed: %+v", got)
	}

	// Wrong year must not match.
	if got, err := store.MovieByNameYear(ctx, "District 9", 2010); err != nil || got != nil {
		t.Errorf("wrong-year lookup = (%v, %v), want miss", got, err)
	}
}

func TestSaveMovieIsIdempotentForCollections(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	m := sampleMovie()
	if err := store.SaveMovie(ctx, m); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.SaveMovie(ctx, m); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := store.MovieByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("MovieByID: %v", err)
	}
	if len(got.Genres) != 2 || len(got.Posters) != 1 {
		t.Errorf("re-save duplicated collections: %d genres, %d posters", len(got.Genres), len(got.Posters))
	}
}

func TestGenresSharedAcrossMovies(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := sampleMovie()
	if err := store.SaveMovie(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := sampleMovie()
	second.ID = 27205
	second.IMDBID = "tt1375666"
	second.Name = "Inception"
	second.Posters = []movie.Poster{{MovieID: 27205, RemoteURL: "https://img.test/inception.jpg"}}
	if err := store.SaveMovie(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	genre, err := store.GenreByID(ctx, 878)
	if err != nil {
		t.Fatalf("GenreByID: %v", err)
	}
	if genre == nil || genre.Name != "Science Fiction" {
		t.Fatalf("shared genre = %+v", genre)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["movies"] != 2 || stats["genres"] != 2 {
		t.Errorf("stats = %v, want 2 movies sharing 2 genres", stats)
	}
}

func TestSaveMovieNeverMovesRefreshBackwards(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	m := sampleMovie()
	if err := store.SaveMovie(ctx, m); err != nil {
		t.Fatalf("save: %v", err)
	}

	stale := sampleMovie()
	stale.LastRefreshedAt = m.LastRefreshedAt.Add(-48 * time.Hour)
	if err := store.SaveMovie(ctx, stale); err != nil {
		t.Fatalf("stale save: %v", err)
	}

	got, err := store.MovieByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("MovieByID: %v", err)
	}
	if got.LastRefreshedAt.Before(m.LastRefreshedAt) {
		t.Errorf("refresh timestamp moved backwards: %v < %v", got.LastRefreshedAt, m.LastRefreshedAt)
	}
}

func TestMemoRoundTripAndUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.SaveMovie(ctx, sampleMovie()); err != nil {
		t.Fatalf("SaveMovie: %v", err)
	}

	if _, ok, err := store.FindMemo(ctx, "district 9 movie"); err != nil || ok {
		t.Fatalf("memo before save = (%v, %v)", ok, err)
	}
	if err := store.SaveMemo(ctx, "district 9 movie", 17654); err != nil {
		t.Fatalf("SaveMemo: %v", err)
	}
	id, ok, err := store.FindMemo(ctx, "district 9 movie")
	if err != nil || !ok || id != 17654 {
		t.Fatalf("memo = (%d, %v, %v)", id, ok, err)
	}

	// Re-pointing the same query is an upsert, not an error.
	second := sampleMovie()
	second.ID = 27205
	second.IMDBID = "tt1375666"
	if err := store.SaveMovie(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	if err := store.SaveMemo(ctx, "district 9 movie", 27205); err != nil {
		t.Fatalf("memo upsert: %v", err)
	}
	if id, _, _ := store.FindMemo(ctx, "district 9 movie"); id != 27205 {
		t.Errorf("memo after upsert = %d, want 27205", id)
	}
}

func TestSetPosterLocalPath(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.SaveMovie(ctx, sampleMovie()); err != nil {
		t.Fatalf("SaveMovie: %v", err)
	}
	got, err := store.MovieByID(ctx, 17654)
	if err != nil {
		t.Fatalf("MovieByID: %v", err)
	}
	if err := store.SetPosterLocalPath(ctx, got.Posters[0].ID, "/tmp/d9.jpg"); err != nil {
		t.Fatalf("SetPosterLocalPath: %v", err)
	}

	got, err = store.MovieByID(ctx, 17654)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Posters[0].LocalPath != "/tmp/d9.jpg" {
		t.Errorf("local path = %q", got.Posters[0].LocalPath)
	}

	if err := store.SetPosterLocalPath(ctx, 9999, "/tmp/x.jpg"); err == nil {
		t.Error("expected error for unknown poster id")
	}
}

func TestClearEmptiesAllTables(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.SaveMovie(ctx, sampleMovie()); err != nil {
		t.Fatalf("SaveMovie: %v", err)
	}
	if err := store.SaveMemo(ctx, "district 9 movie", 17654); err != nil {
		t.Fatalf("SaveMemo: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	for table, count := range stats {
		if count != 0 {
			t.Errorf("table %s not empty after clear: %d", table, count)
		}
	}
}
