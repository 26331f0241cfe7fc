package discidcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"disclabel/internal/logging"
	"disclabel/internal/metadata"
	"disclabel/internal/services"
)

// Entry is one cached fingerprint and the record it resolved to.
type Entry struct {
	Fingerprint string          `json:"fingerprint"`
	Record      metadata.Record `json:"record"`
	CachedAt    time.Time       `json:"cached_at"`
}

// Age renders how long ago the entry was cached, e.g. "3 days ago".
func (e Entry) Age(now time.Time) string {
	if e.CachedAt.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(e.CachedAt, now, "ago", "from now")
}

// Cache provides thread-safe access to the fingerprint cache.
type Cache struct {
	path    string
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache creates a cache backed by path. An empty path yields a cache whose
// operations are all no-ops. The file is written lazily on the first Store.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "discidcache")
	c := &Cache{
		path:    strings.TrimSpace(path),
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	if c.path == "" {
		return c
	}
	if err := c.load(); err != nil {
		logger.Warn("failed to load disc id cache",
			logging.String(logging.FieldEventType, "discidcache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "previously cached discs will be looked up again"))
	}
	return c
}

// Enabled reports whether the cache is backed by a file.
func (c *Cache) Enabled() bool {
	return c != nil && c.path != ""
}

// Path returns the backing file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Lookup returns the cached record for fingerprint.
func (c *Cache) Lookup(fingerprint string) (metadata.Record, bool) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" || !c.Enabled() {
		return metadata.Record{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[fingerprint]
	if !found {
		return metadata.Record{}, false
	}
	return entry.Record, true
}

// Store caches record under fingerprint. Unresolved records are never cached
// so a disc that failed once is retried on its next insertion.
func (c *Cache) Store(fingerprint string, record metadata.Record) error {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return services.Wrap(services.ErrValidation, "discidcache", "store", "fingerprint cannot be empty", nil)
	}
	if !c.Enabled() || !record.Resolved() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = Entry{
		Fingerprint: fingerprint,
		Record:      record,
		CachedAt:    c.now().UTC(),
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cached disc fingerprint",
		logging.String(logging.FieldEventType, "discidcache_stored"),
		logging.String("fingerprint", fingerprint),
		logging.String("title_primary", record.Primary),
		logging.String("source", string(record.Source)))
	return nil
}

// Remove deletes the entry for fingerprint and persists the change.
func (c *Cache) Remove(fingerprint string) error {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return services.Wrap(services.ErrValidation, "discidcache", "remove", "fingerprint cannot be empty", nil)
	}
	if !c.Enabled() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[fingerprint]; !exists {
		return services.Wrap(services.ErrNotFound, "discidcache", "remove", fmt.Sprintf("fingerprint %q not cached", fingerprint), nil)
	}
	delete(c.entries, fingerprint)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("removed disc fingerprint from cache", logging.String("fingerprint", fingerprint))
	return nil
}

// RemoveAt deletes the n-th entry (1-based) of List.
func (c *Cache) RemoveAt(n int) (Entry, error) {
	entries := c.List()
	if n < 1 || n > len(entries) {
		return Entry{}, services.Wrap(services.ErrValidation, "discidcache", "remove",
			fmt.Sprintf("entry %d out of range (1-%d)", n, len(entries)), nil)
	}
	entry := entries[n-1]
	return entry, c.Remove(entry.Fingerprint)
}

// List returns all entries sorted by CachedAt, newest first.
func (c *Cache) List() []Entry {
	if !c.Enabled() {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sorted()
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cleared disc id cache")
	return nil
}

// Count returns the number of entries.
func (c *Cache) Count() int {
	if !c.Enabled() {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) sorted() []Entry {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Fingerprint < entries[j].Fingerprint
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Fingerprint) != "" && entry.Record.Resolved() {
			c.entries[entry.Fingerprint] = entry
		}
	}
	c.logger.Debug("loaded disc id cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache atomically. Callers hold mu.
func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
