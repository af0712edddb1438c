package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelcache/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestMovieDetailsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" {
			t.Fatalf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("append_to_response") != "images,releases" {
			t.Fatalf("expected appended images and releases, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 27205,
			"imdb_id": "tt1375666",
			"title": "Inception",
			"original_title": "Inception",
			"release_date": "2010-07-15",
			"vote_average": 8.4,
			"vote_count": 34000,
			"overview": "A thief who steals corporate secrets.",
			"original_language": "en",
			"genres": [{"id": 28, "name": "Action"}],
			"images": {"posters": [{"file_path": "/abc.jpg", "width": 2000, "height": 3000}]},
			"releases": {"countries": [{"iso_3166_1": "US", "certification": "PG-13"}]}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US", tmdb.WithImageBaseURL("https://img.example/t"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	payload, err := client.MovieDetails(context.Background(), 27205)
	if err != nil {
		t.Fatalf("MovieDetails returned error: %v", err)
	}
	if payload == nil || payload.ID != 27205 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload.Name == nil || *payload.Name != "Inception" {
		t.Fatalf("expected name Inception, got %#v", payload.Name)
	}
	if payload.Certification == nil || *payload.Certification != "PG-13" {
		t.Fatalf("expected US certification, got %#v", payload.Certification)
	}
	if len(payload.Posters) != 1 || payload.Posters[0].URL != "https://img.example/t/abc.jpg" {
		t.Fatalf("unexpected posters: %#v", payload.Posters)
	}
	if payload.Posters[0].Size != "2000x3000" {
		t.Fatalf("unexpected poster size: %q", payload.Posters[0].Size)
	}
	if len(payload.Genres) != 1 || payload.Genres[0].ID != 28 {
		t.Fatalf("unexpected genres: %#v", payload.Genres)
	}
}

func TestMovieDetailsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	payload, err := client.MovieDetails(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected clean miss, got error: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload, got %#v", payload)
	}
}

func TestMovieDetailsServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.MovieDetails(context.Background(), 1)
	if !errors.Is(err, tmdb.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSearchMovieFirstResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "inception" {
			t.Fatalf("expected query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":27205,"title":"Inception","release_date":"2010-07-15"},{"id":1,"title":"Other"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	payload, err := client.SearchMovie(context.Background(), "inception")
	if err != nil {
		t.Fatalf("SearchMovie returned error: %v", err)
	}
	if payload == nil || payload.ID != 27205 {
		t.Fatalf("expected first result, got %#v", payload)
	}
}

func TestSearchMovieNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	payload, err := client.SearchMovie(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("expected clean miss, got error: %v", err)
	}
	if payload != nil {
		t.Fatalf("expected nil payload, got %#v", payload)
	}
}

func TestFindByIMDBID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt1375666" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" {
			t.Fatalf("expected external_source parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"movie_results":[{"id":27205,"title":"Inception"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	payload, err := client.FindByIMDBID(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("FindByIMDBID returned error: %v", err)
	}
	if payload == nil || payload.ID != 27205 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload.IMDBID == nil || *payload.IMDBID != "tt1375666" {
		t.Fatalf("expected imdb id on payload, got %#v", payload.IMDBID)
	}
}

func TestSearchMovieEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchMovie(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty query")
	}
}
