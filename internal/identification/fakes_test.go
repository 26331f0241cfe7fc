package identification

import (
	"context"
	"io"
	"sync"

	"disclabel/internal/identification/discogs"
	"disclabel/internal/identification/musicbrainz"
	"disclabel/internal/identification/tmdb"
)

type fakeDiscs struct {
	discIDErrs    []error
	discRelease   *musicbrainz.Release
	discIDCalls   int
	release       *musicbrainz.Release
	releaseErr    error
	releaseCalls  []string
	searchResults []musicbrainz.Release
	searchErr     error
	searchCalls   int
	tracks        []string
	tracksErr     error
	trackCalls    int
}

func (f *fakeDiscs) LookupDiscID(_ context.Context, _ string) (*musicbrainz.Release, error) {
	f.discIDCalls++
	if idx := f.discIDCalls - 1; idx < len(f.discIDErrs) && f.discIDErrs[idx] != nil {
		return nil, f.discIDErrs[idx]
	}
	if f.discRelease == nil {
		return nil, errNotFound
	}
	release := *f.discRelease
	return &release, nil
}

func (f *fakeDiscs) LookupRelease(_ context.Context, mbid string) (*musicbrainz.Release, error) {
	f.releaseCalls = append(f.releaseCalls, mbid)
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	if f.release == nil {
		return nil, errNotFound
	}
	release := *f.release
	return &release, nil
}

func (f *fakeDiscs) SearchReleases(_ context.Context, _, _ string) ([]musicbrainz.Release, error) {
	f.searchCalls++
	return f.searchResults, f.searchErr
}

func (f *fakeDiscs) TrackTitles(_ context.Context, _ string) ([]string, error) {
	f.trackCalls++
	return f.tracks, f.tracksErr
}

type fakeGenres struct {
	results     []discogs.Release
	searchErr   error
	searchCalls int
	once        []discogs.Release
	onceErr     error
	onceCalls   int
	onceArgs    [][2]string
}

func (f *fakeGenres) Search(_ context.Context, _, _ string) ([]discogs.Release, error) {
	f.searchCalls++
	return f.results, f.searchErr
}

func (f *fakeGenres) SearchOnce(_ context.Context, artist, album string) ([]discogs.Release, error) {
	f.onceCalls++
	f.onceArgs = append(f.onceArgs, [2]string{artist, album})
	return f.once, f.onceErr
}

type scriptedConsole struct {
	answers []string
	prompts []string
	lines   []string
}

func (c *scriptedConsole) ReadLine(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if len(c.answers) == 0 {
		return "", io.EOF
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

func (c *scriptedConsole) Println(line string) {
	c.lines = append(c.lines, line)
}

func (c *scriptedConsole) printed(line string) bool {
	for _, l := range c.lines {
		if l == line {
			return true
		}
	}
	return false
}

type countingClipboard struct {
	text  string
	err   error
	calls int
}

func (c *countingClipboard) ReadClipboard() (string, error) {
	c.calls++
	return c.text, c.err
}

type recordingEjector struct {
	mu      sync.Mutex
	devices chan string
}

func newRecordingEjector() *recordingEjector {
	return &recordingEjector{devices: make(chan string, 4)}
}

func (e *recordingEjector) Eject(_ context.Context, device string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices <- device
	return nil
}

type fakeMovies struct {
	response     *tmdb.Response
	searchErr    error
	details      map[int64]*tmdb.Details
	detailsErr   error
	cert         string
	certErr      error
	certRegion   string
	cast         []string
	castErr      error
	castLimit    int
	detailsCalls int
}

func (f *fakeMovies) SearchMovie(_ context.Context, _ string) (*tmdb.Response, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.response == nil {
		return &tmdb.Response{}, nil
	}
	return f.response, nil
}

func (f *fakeMovies) MovieDetails(_ context.Context, movieID int64) (*tmdb.Details, error) {
	f.detailsCalls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	if d, ok := f.details[movieID]; ok {
		return d, nil
	}
	return &tmdb.Details{ID: movieID}, nil
}

func (f *fakeMovies) Certification(_ context.Context, _ int64, region string) (string, error) {
	f.certRegion = region
	return f.cert, f.certErr
}

func (f *fakeMovies) Cast(_ context.Context, _ int64, limit int) ([]string, error) {
	f.castLimit = limit
	return f.cast, f.castErr
}
