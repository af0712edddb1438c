package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable marks transient provider failures (network errors, timeouts,
// server-side errors). Callers distinguish it from a clean "no match", which
// is reported as a nil payload with a nil error.
var ErrUnavailable = errors.New("tmdb unavailable")

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithImageBaseURL overrides the base URL used to build absolute poster URLs.
func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.imageBaseURL = trimmed
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: "https://image.tmdb.org/t/p/original",
		language:     strings.TrimSpace(language),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// MovieDetails fetches the full detail payload for a TMDB movie id, with
// poster images and release certifications appended. Returns (nil, nil) when
// the id is unknown to the provider.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Payload, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "images,releases")

	var doc movieDoc
	found, err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &doc)
	if err != nil {
		return nil, err
	}
	if !found || doc.ID == 0 {
		return nil, nil
	}
	return c.payloadFromMovieDoc(doc), nil
}

// FindByIMDBID resolves an IMDb identifier to a summary payload carrying at
// least the TMDB id. Returns (nil, nil) when nothing matches.
func (c *Client) FindByIMDBID(ctx context.Context, imdbID string) (*Payload, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}
	params := url.Values{}
	params.Set("external_source", "imdb_id")

	var doc struct {
		MovieResults []searchDoc `json:"movie_results"`
	}
	found, err := c.getJSON(ctx, "/find/"+url.PathEscape(imdbID), params, &doc)
	if err != nil {
		return nil, err
	}
	if !found || len(doc.MovieResults) == 0 || doc.MovieResults[0].ID == 0 {
		return nil, nil
	}
	payload := payloadFromSearchDoc(doc.MovieResults[0])
	payload.IMDBID = &imdbID
	return payload, nil
}

// SearchMovie performs a free-text movie search and returns the first match,
// or (nil, nil) when the provider has none.
func (c *Client) SearchMovie(ctx context.Context, query string) (*Payload, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)

	var doc struct {
		Results []searchDoc `json:"results"`
	}
	found, err := c.getJSON(ctx, "/search/movie", params, &doc)
	if err != nil {
		return nil, err
	}
	if !found || len(doc.Results) == 0 || doc.Results[0].ID == 0 {
		return nil, nil
	}
	return payloadFromSearchDoc(doc.Results[0]), nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return false, fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return false, fmt.Errorf("%w: execute request (latency=%v): %w", ErrUnavailable, latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return false, fmt.Errorf("%w: tmdb returned %d (latency=%v)", ErrUnavailable, resp.StatusCode, latency)
	default:
		return false, fmt.Errorf("tmdb returned %d (latency=%v)", resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode tmdb response: %w", err)
	}
	return true, nil
}
