package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"disclabel/internal/config"
	"disclabel/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *httptest.Server
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	srv := httptest.NewServer(newFakeServices(t))
	t.Cleanup(srv.Close)

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("DISCOGS_TOKEN", "")

	opts = append([]testsupport.ConfigOption{
		testsupport.WithStubbedBinaries(),
		testsupport.WithServiceURLs(srv.URL),
		testsupport.WithDrives(filepath.Join(base, "fake-drive")),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	configPath := filepath.Join(homeDir, ".config", "disclabel", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		server:     srv,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// newFakeServices answers the MusicBrainz, Discogs, and TMDB endpoints the
// commands touch, all from one base URL.
func newFakeServices(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	writeBody := func(w http.ResponseWriter, body any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}

	mux.HandleFunc("/release/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/release/")
		if id != "b84ee12a-09ef-421b-82de-0441a926375b" {
			http.NotFound(w, r)
			return
		}
		writeBody(w, map[string]any{
			"id":                   id,
			"title":                "Orbital 2",
			"date":                 "1993-05-24",
			"artist-credit-phrase": "Orbital",
			"media": []any{map[string]any{
				"position": 1,
				"tracks": []any{
					map[string]any{"position": 1, "title": "Time Becomes"},
					map[string]any{"position": 2, "title": "Planet of the Shapes"},
				},
			}},
		})
	})
	mux.HandleFunc("/database/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Discogs token=test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeBody(w, map[string]any{"results": []any{
			map[string]any{"id": 1, "title": "Orbital - Orbital 2", "year": "1993", "genre": []string{"electronic"}},
		}})
	})
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.URL.Query().Get("query"), "heat") {
			writeBody(w, map[string]any{"page": 1, "results": []any{
				map[string]any{"id": 949, "title": "Heat", "release_date": "1995-12-15"},
			}})
			return
		}
		writeBody(w, map[string]any{"page": 1, "results": []any{}})
	})
	mux.HandleFunc("/movie/949", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, map[string]any{
			"id": 949, "title": "Heat", "release_date": "1995-12-15", "runtime": 170,
			"vote_average": 7.9, "budget": 60000000,
			"genres":   []any{map[string]any{"id": 28, "name": "Action"}, map[string]any{"id": 80, "name": "Crime"}},
			"overview": "Obsessive master thief Neil McCauley leads a top-notch crew.",
		})
	})
	mux.HandleFunc("/movie/949/credits", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, map[string]any{"cast": []any{map[string]any{"name": "Al Pacino"}, map[string]any{"name": "Robert De Niro"}}})
	})
	mux.HandleFunc("/movie/949/release_dates", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, map[string]any{"results": []any{
			map[string]any{"iso_3166_1": "US", "release_dates": []any{map[string]any{"certification": "R"}}},
		}})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, fmt.Sprintf("unexpected path %s", r.URL.Path), http.StatusNotFound)
	})
	return mux
}
