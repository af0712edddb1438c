package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"reelcache/internal/logging"
	"reelcache/internal/movie"
)

// ErrNotMaterialized is returned by cached-only requests for posters that
// have no local file yet.
var ErrNotMaterialized = errors.New("poster not materialized")

// PathSaver persists the local path of a downloaded poster. *movie.Store
// satisfies it.
type PathSaver interface {
	SetPosterLocalPath(ctx context.Context, posterID int64, localPath string) error
}

// Store materializes poster images under a local directory. Downloads are
// guarded by a file lock so concurrent processes fetch each poster once.
type Store struct {
	dir        string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient overrides the default download client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewStore creates an asset store rooted at dir.
func NewStore(dir string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		dir:        dir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewComponentLogger(logger, "assets"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureLocal returns a local file path for the poster, downloading it on
// first use. cachedOnly requests never touch the network. The persisted path
// is recorded through saver in its own call, never inside a caller
// transaction.
func (s *Store) EnsureLocal(ctx context.Context, saver PathSaver, poster movie.Poster, cachedOnly bool) (string, error) {
	if poster.ID == 0 || poster.RemoteURL == "" {
		return "", fmt.Errorf("%w: poster has no identity", movie.ErrAssetUnavailable)
	}

	if poster.LocalPath != "" {
		if _, err := os.Stat(poster.LocalPath); err == nil {
			return poster.LocalPath, nil
		}
		// Recorded file vanished; fall through and re-materialize.
	}

	if cachedOnly {
		return "", ErrNotMaterialized
	}

	target := s.targetPath(poster)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("%w: create poster dir: %w", movie.ErrAssetUnavailable, err)
	}

	lockPath := target + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("%w: acquire download lock: %w", movie.ErrAssetUnavailable, err)
	}
	if !locked {
		return "", fmt.Errorf("%w: download lock busy", movie.ErrAssetUnavailable)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	// Another process may have finished the download while we waited.
	if _, err := os.Stat(target); err != nil {
		if err := s.download(ctx, poster.RemoteURL, target); err != nil {
			return "", err
		}
	}

	if err := saver.SetPosterLocalPath(ctx, poster.ID, target); err != nil {
		return "", fmt.Errorf("record poster path: %w", err)
	}

	s.logger.Info("poster materialized",
		logging.Int64(logging.FieldMovieID, poster.MovieID),
		logging.String("path", target))
	return target, nil
}

func (s *Store) targetPath(poster movie.Poster) string {
	name := path.Base(poster.RemoteURL)
	if name == "" || name == "." || name == "/" {
		name = strconv.FormatInt(poster.ID, 10) + ".jpg"
	}
	return filepath.Join(s.dir, strconv.FormatInt(poster.MovieID, 10), name)
}

// download writes the remote image to target via a temp file and rename, so
// readers never observe a partial poster.
func (s *Store) download(ctx context.Context, remoteURL, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", movie.ErrAssetUnavailable, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetch poster: %w", movie.ErrAssetUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: poster fetch returned %d", movie.ErrAssetUnavailable, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".poster-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", movie.ErrAssetUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write poster: %w", movie.ErrAssetUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close poster file: %w", movie.ErrAssetUnavailable, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: finalize poster: %w", movie.ErrAssetUnavailable, err)
	}
	return nil
}
