package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"disclabel/internal/config"
	"disclabel/internal/deps"
)

const serviceTimeout = 5 * time.Second

// CheckMusicBrainz verifies the MusicBrainz web service answers a minimal search.
func CheckMusicBrainz(ctx context.Context, baseURL, userAgent string) Result {
	const name = "MusicBrainz"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	params := url.Values{}
	params.Set("query", "release:test")
	params.Set("limit", "1")
	params.Set("fmt", "json")
	return probe(ctx, name, base+"/release/?"+params.Encode(), func(req *http.Request) {
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
	})
}

// CheckDiscogs verifies Discogs connectivity and that the token is accepted.
func CheckDiscogs(ctx context.Context, baseURL, token string) Result {
	const name = "Discogs"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing token"}
	}
	params := url.Values{}
	params.Set("q", "test")
	params.Set("per_page", "1")
	return probe(ctx, name, base+"/database/search?"+params.Encode(), func(req *http.Request) {
		req.Header.Set("Authorization", "Discogs token="+strings.TrimSpace(token))
	})
}

// CheckTMDB verifies TMDB connectivity and that the API key is accepted.
func CheckTMDB(ctx context.Context, baseURL, apiKey string) Result {
	const name = "TMDB"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	params := url.Values{}
	params.Set("api_key", strings.TrimSpace(apiKey))
	return probe(ctx, name, base+"/configuration?"+params.Encode(), nil)
}

func probe(ctx context.Context, name, target string, decorate func(*http.Request)) Result {
	checkCtx, cancel := context.WithTimeout(ctx, serviceTimeout)
	defer cancel()

	client := &http.Client{Timeout: serviceTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if decorate != nil {
		decorate(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeHTTPError(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid credentials)"}
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode == http.StatusServiceUnavailable:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (rate limited, %d)", resp.StatusCode)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the config relies on.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func summarizeHTTPError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (service unreachable)"
	}
	return fmt.Sprintf("request failed (%v)", err)
}
