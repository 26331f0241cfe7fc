package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"disclabel/internal/metadata"
	"disclabel/internal/retry"
	"disclabel/internal/services"
)

const defaultUserAgent = "disclabel/1.0"

// disambiguation matches the numeric suffix Discogs appends to duplicate
// artist names, e.g. "Orbital (2)".
var disambiguation = regexp.MustCompile(`\s+\(\d+\)$`)

// Release is the normalized subset of a Discogs search result.
type Release struct {
	ID     int64
	Artist string
	Title  string
	Year   string
	Genres []string
}

// Genre returns the first genre tag, if any.
func (r Release) Genre() string {
	return metadata.FirstGenre(r.Genres)
}

// Record converts r into a canonical record. Discogs ids are not surfaced as
// external ids because labels link to MusicBrainz.
func (r Release) Record(source metadata.Source) metadata.Record {
	return metadata.New(source, r.Artist, r.Title, r.Year, "").WithGenre(r.Genre())
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Year  any      `json:"year"`
	Genre []string `json:"genre"`
	Style []string `json:"style"`
}

// Client provides access to the Discogs database search.
type Client struct {
	token      string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	runner     *retry.Runner
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

// WithRetryRunner sets the runner that wraps retried searches.
func WithRetryRunner(runner *retry.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithUserAgent sets the User-Agent header Discogs requires.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a Discogs client authenticated with a personal access token.
func New(token, baseURL string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "discogs", "init", "discogs token required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("discogs base url required")
	}
	client := &Client{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.runner == nil {
		client.runner = retry.New(retry.DefaultPolicy())
	}
	return client, nil
}

// Search looks releases up by artist and release title, retrying transient
// failures.
func (c *Client) Search(ctx context.Context, artist, album string) ([]Release, error) {
	var releases []Release
	err := c.runner.Run(ctx, "discogs search", func(attemptCtx context.Context) error {
		found, err := c.search(attemptCtx, artist, album)
		releases = found
		return err
	})
	return releases, err
}

// SearchOnce performs a single search attempt. It backs best-effort genre
// lookups that must never be retried.
func (c *Client) SearchOnce(ctx context.Context, artist, album string) ([]Release, error) {
	var releases []Release
	err := c.runner.Once(ctx, func(attemptCtx context.Context) error {
		found, err := c.search(attemptCtx, artist, album)
		releases = found
		return err
	})
	return releases, err
}

func (c *Client) search(ctx context.Context, artist, album string) ([]Release, error) {
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)
	if artist == "" && album == "" {
		return nil, services.Wrap(services.ErrValidation, "discogs", "search", "artist or album required", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/database/search")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discogs", "search", "parse url", err)
	}
	params := url.Values{}
	params.Set("type", "release")
	if artist != "" {
		params.Set("artist", artist)
	}
	if album != "" {
		params.Set("release_title", album)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "discogs", "search", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "discogs", "search", fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, services.Wrap(services.ErrTransient, "discogs", "search",
			fmt.Sprintf("rate limited (retry-after=%s, latency=%v)", resp.Header.Get("Retry-After"), latency), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, services.Wrap(services.ErrTransient, "discogs", "search", fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrMalformed, "discogs", "search", "decode response", err)
	}
	releases := make([]Release, 0, len(payload.Results))
	for _, result := range payload.Results {
		releases = append(releases, convertResult(result))
	}
	return releases, nil
}

func convertResult(result searchResult) Release {
	artist, title := splitTitle(result.Title)
	return Release{
		ID:     result.ID,
		Artist: artist,
		Title:  title,
		Year:   metadata.CleanYearValue(result.Year),
		Genres: append([]string(nil), result.Genre...),
	}
}

// splitTitle separates Discogs "Artist - Title" result titles. Titles without
// the separator are returned with an empty artist.
func splitTitle(value string) (string, string) {
	value = strings.TrimSpace(value)
	artist, title, found := strings.Cut(value, " - ")
	if !found {
		return "", value
	}
	artist = disambiguation.ReplaceAllString(strings.TrimSpace(artist), "")
	return artist, strings.TrimSpace(title)
}
