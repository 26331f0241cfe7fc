package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"disclabel/internal/retry"
	"disclabel/internal/services"
)

const (
	defaultUserAgent = "disclabel/1.0"
	defaultRateLimit = time.Second
	searchLimit      = 10
)

// Client provides access to the MusicBrainz web service.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	runner     *retry.Runner
	rateLimit  time.Duration

	mu          sync.Mutex
	lastRequest time.Time
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

// WithRetryRunner sets the runner that wraps every request.
func WithRetryRunner(runner *retry.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithUserAgent sets the identifying User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimit sets the minimum spacing between requests. Zero disables it.
func WithRateLimit(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.rateLimit = d
		}
	}
}

// New creates a MusicBrainz client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		rateLimit:  defaultRateLimit,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.runner == nil {
		client.runner = retry.New(retry.DefaultPolicy())
	}
	return client, nil
}

// LookupDiscID returns the first release attached to a disc id.
func (c *Client) LookupDiscID(ctx context.Context, discID string) (*Release, error) {
	discID = strings.TrimSpace(discID)
	if discID == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "discid lookup", "disc id must not be empty", nil)
	}
	params := url.Values{}
	params.Set("inc", "recordings+artist-credits+release-groups")
	var payload discResponse
	if err := c.get(ctx, "discid lookup", "/discid/"+url.PathEscape(discID), params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Releases) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "musicbrainz", "discid lookup", "no releases for disc id "+discID, nil)
	}
	release := convertRelease(payload.Releases[0])
	return &release, nil
}

// LookupRelease fetches a release by MBID including its recordings.
func (c *Client) LookupRelease(ctx context.Context, mbid string) (*Release, error) {
	mbid = strings.TrimSpace(mbid)
	if mbid == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "release lookup", "mbid must not be empty", nil)
	}
	params := url.Values{}
	params.Set("inc", "recordings+artist-credits")
	var payload rawRelease
	if err := c.get(ctx, "release lookup", "/release/"+url.PathEscape(mbid), params, &payload); err != nil {
		return nil, err
	}
	release := convertRelease(payload)
	if release.ID == "" {
		release.ID = mbid
	}
	return &release, nil
}

// SearchReleases searches by artist and album and returns results in ranked order.
func (c *Client) SearchReleases(ctx context.Context, artist, album string) ([]Release, error) {
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(album) == "" {
		return nil, services.Wrap(services.ErrValidation, "musicbrainz", "release search", "artist and album are required", nil)
	}
	params := url.Values{}
	params.Set("query", searchQuery(artist, album))
	params.Set("limit", strconv.Itoa(searchLimit))
	var payload searchResponse
	if err := c.get(ctx, "release search", "/release", params, &payload); err != nil {
		return nil, err
	}
	releases := make([]Release, 0, len(payload.Releases))
	for _, raw := range payload.Releases {
		releases = append(releases, convertRelease(raw))
	}
	return releases, nil
}

// TrackTitles returns the recording titles of a release in medium order.
func (c *Client) TrackTitles(ctx context.Context, mbid string) ([]string, error) {
	release, err := c.LookupRelease(ctx, mbid)
	if err != nil {
		return nil, err
	}
	return release.Tracks, nil
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "musicbrainz", operation, "parse url", err)
	}
	params.Set("fmt", "json")
	endpoint.RawQuery = params.Encode()

	return c.runner.Run(ctx, "musicbrainz "+operation, func(attemptCtx context.Context) error {
		if err := c.waitForRateLimit(attemptCtx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return services.Wrap(services.ErrTransient, "musicbrainz", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "musicbrainz", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
		case resp.StatusCode != http.StatusOK:
			return services.Wrap(services.ErrTransient, "musicbrainz", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return services.Wrap(services.ErrMalformed, "musicbrainz", operation, "decode response", err)
		}
		return nil
	})
}

// waitForRateLimit keeps requests at least rateLimit apart.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rateLimit > 0 && !c.lastRequest.IsZero() {
		if wait := c.rateLimit - time.Since(c.lastRequest); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}
