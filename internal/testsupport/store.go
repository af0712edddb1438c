package testsupport

import (
	"testing"

	"reelcache/internal/config"
	"reelcache/internal/movie"
)

// MustOpenStore opens a movie.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *movie.Store {
	t.Helper()

	store, err := movie.Open(cfg)
	if err != nil {
		t.Fatalf("movie.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
