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

	"disclabel/internal/retry"
	"disclabel/internal/services"
)

// Movie represents a single TMDB search match.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Details is the movie details payload.
type Details struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	Budget      int64   `json:"budget"`
	Genres      []Genre `json:"genres"`
	Overview    string  `json:"overview"`
}

// GenreNames returns the non-empty genre names in order.
func (d Details) GenreNames() []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type creditsResponse struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
}

type releaseDatesResponse struct {
	Results []struct {
		Country      string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

// Searcher defines the TMDB operations used by the movie flow.
type Searcher interface {
	SearchMovie(ctx context.Context, query string) (*Response, error)
	MovieDetails(ctx context.Context, movieID int64) (*Details, error)
	Certification(ctx context.Context, movieID int64, region string) (string, error)
	Cast(ctx context.Context, movieID int64, limit int) ([]string, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	runner     *retry.Runner
}

var _ Searcher = (*Client)(nil)

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

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "init", "tmdb api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
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

// SearchMovie returns the first page of movie matches for a title.
func (c *Client) SearchMovie(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", "1")
	var payload Response
	if err := c.get(ctx, "search", "/search/movie", params, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieDetails fetches movie details by TMDB ID.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Details, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "details", "movie id must be positive", nil)
	}
	var payload Details
	if err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", movieID), url.Values{}, true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Certification returns the first non-empty certification for region,
// falling back to any region when the preferred one has none listed.
func (c *Client) Certification(ctx context.Context, movieID int64, region string) (string, error) {
	if movieID <= 0 {
		return "", services.Wrap(services.ErrValidation, "tmdb", "release dates", "movie id must be positive", nil)
	}
	var payload releaseDatesResponse
	if err := c.get(ctx, "release dates", fmt.Sprintf("/movie/%d/release_dates", movieID), url.Values{}, false, &payload); err != nil {
		return "", err
	}

	region = strings.ToUpper(strings.TrimSpace(region))
	candidates := payload.Results
	for i, entry := range payload.Results {
		if strings.EqualFold(entry.Country, region) {
			candidates = payload.Results[i : i+1]
			break
		}
	}
	for _, entry := range candidates {
		for _, release := range entry.ReleaseDates {
			if cert := strings.TrimSpace(release.Certification); cert != "" {
				return cert, nil
			}
		}
	}
	return "", nil
}

// Cast returns up to limit billed cast names.
func (c *Client) Cast(ctx context.Context, movieID int64, limit int) ([]string, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "credits", "movie id must be positive", nil)
	}
	var payload creditsResponse
	if err := c.get(ctx, "credits", fmt.Sprintf("/movie/%d/credits", movieID), url.Values{}, false, &payload); err != nil {
		return nil, err
	}
	names := make([]string, 0, limit)
	for _, entry := range payload.Cast {
		if limit > 0 && len(names) >= limit {
			break
		}
		if name := strings.TrimSpace(entry.Name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values, localized bool, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "tmdb", operation, "parse tmdb url", err)
	}
	params.Set("api_key", c.apiKey)
	if localized && c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	return c.runner.Run(ctx, "tmdb "+operation, func(attemptCtx context.Context) error {
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		requestStart := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(requestStart)
		if err != nil {
			return services.Wrap(services.ErrTransient, "tmdb", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "tmdb", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
		case resp.StatusCode != http.StatusOK:
			return services.Wrap(services.ErrTransient, "tmdb", operation, fmt.Sprintf("returned %d (latency=%v)", resp.StatusCode, latency), nil)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return services.Wrap(services.ErrMalformed, "tmdb", operation, "decode tmdb response", err)
		}
		return nil
	})
}
