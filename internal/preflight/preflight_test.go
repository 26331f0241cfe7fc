package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"disclabel/internal/config"
	"disclabel/internal/disc"
	"disclabel/internal/services"
	"disclabel/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckMusicBrainz_SendsUserAgent(t *testing.T) {
	var gotUA, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckMusicBrainz(context.Background(), srv.URL+"/", "disclabel/1.0 ( me@example.com )")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if gotUA != "disclabel/1.0 ( me@example.com )" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	if gotPath != "/release/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestCheckMusicBrainz_RateLimitedStillReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result := CheckMusicBrainz(context.Background(), srv.URL, "ua")
	if !result.Passed {
		t.Fatalf("expected rate limited service to count as reachable, got: %s", result.Detail)
	}
}

func TestCheckDiscogs_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Discogs token=good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckDiscogs(context.Background(), srv.URL, "good-token"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckDiscogs(context.Background(), srv.URL, "bad-token"); result.Passed {
		t.Fatal("expected failure for bad token")
	}
}

func TestCheckDiscogs_MissingToken(t *testing.T) {
	result := CheckDiscogs(context.Background(), "http://localhost", "")
	if result.Passed {
		t.Fatal("expected failure for missing token")
	}
}

func TestCheckTMDB_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckTMDB(context.Background(), srv.URL, "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	result := CheckTMDB(context.Background(), srv.URL, "bad-key")
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if result.Detail != "auth failed (invalid credentials)" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckTMDB_MissingURL(t *testing.T) {
	result := CheckTMDB(context.Background(), "", "key")
	if result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil, nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

type staticProvider map[string]string

func (p staticProvider) Lookup(_ context.Context, name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", services.Wrap(services.ErrConfiguration, "credentials", "lookup", name+" not configured", nil)
}

func TestRunAll_AllServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithServiceURLs(srv.URL),
		testsupport.WithOutputMode(config.OutputModeBoth),
	)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := RunAll(context.Background(), cfg, nil)
	want := []string{"Log directory", "State directory", "Label directory", "CSV directory", "MusicBrainz", "Discogs", "TMDB"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d: %+v", len(want), len(results), results)
	}
	for i, r := range results {
		if r.Name != want[i] {
			t.Errorf("result %d: expected %q, got %q", i, want[i], r.Name)
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_ResolvesCredentialsThroughProvider(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/configuration" {
			gotKey = r.URL.Query().Get("api_key")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t,
		testsupport.WithServiceURLs(srv.URL),
		testsupport.WithTMDBKey(""),
		testsupport.WithDiscogsToken(""),
	)
	results := RunAll(context.Background(), cfg, staticProvider{"tmdb_api_key": "from-store"})

	byName := make(map[string]Result)
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["TMDB"].Passed || gotKey != "from-store" {
		t.Fatalf("expected TMDB check with stored key, got %+v (key %q)", byName["TMDB"], gotKey)
	}
	if byName["Discogs"].Passed {
		t.Fatal("expected Discogs check to fail without a token")
	}
	if byName["Discogs"].Detail != "missing Discogs user token (set DISCOGS_TOKEN)" {
		t.Fatalf("unexpected Discogs detail %q", byName["Discogs"].Detail)
	}
}

func TestProbeDrives(t *testing.T) {
	list := func(context.Context) ([]string, error) {
		return []string{"/dev/sr0", "/dev/sr1"}, nil
	}
	status := func(device string) (disc.DriveStatus, error) {
		if device == "/dev/sr1" {
			return disc.DriveStatusNoInfo, errors.New("permission denied")
		}
		return disc.DriveStatusDiscOK, nil
	}

	probes, err := ProbeDrives(context.Background(), list, status)
	if err != nil {
		t.Fatalf("ProbeDrives: %v", err)
	}
	if len(probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(probes))
	}
	if got := probes[0].Detail(); got != "/dev/sr0 (disc loaded)" {
		t.Fatalf("unexpected detail %q", got)
	}
	if probes[1].Result().Passed {
		t.Fatal("expected failing probe result")
	}
}

func TestProbeDrives_ListError(t *testing.T) {
	list := func(context.Context) ([]string, error) {
		return nil, errors.New("lsblk missing")
	}
	if _, err := ProbeDrives(context.Background(), list, nil); err == nil {
		t.Fatal("expected list error")
	}
}
