package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

// Store persists credentials as a flat TOML key-value file readable only by
// the owner.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: strings.TrimSpace(path)}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the stored value for name and whether it exists.
func (s *Store) Get(name string) (string, bool, error) {
	values, err := s.withLock(func() (map[string]string, error) { return s.read() })
	if err != nil {
		return "", false, err
	}
	value, ok := values[name]
	value = strings.TrimSpace(value)
	return value, ok && value != "", nil
}

// Set stores value under name.
func (s *Store) Set(name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("credential name is required")
	}
	_, err := s.withLock(func() (map[string]string, error) {
		values, err := s.read()
		if err != nil {
			return nil, err
		}
		values[name] = strings.TrimSpace(value)
		return values, s.write(values)
	})
	return err
}

// Delete removes name from the store.
func (s *Store) Delete(name string) error {
	_, err := s.withLock(func() (map[string]string, error) {
		values, err := s.read()
		if err != nil {
			return nil, err
		}
		if _, ok := values[name]; !ok {
			return values, nil
		}
		delete(values, name)
		return values, s.write(values)
	})
	return err
}

// Names lists stored credential names in sorted order.
func (s *Store) Names() ([]string, error) {
	values, err := s.withLock(func() (map[string]string, error) { return s.read() })
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) withLock(fn func() (map[string]string, error)) (map[string]string, error) {
	if s.path == "" {
		return nil, errors.New("credentials path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("create credentials directory: %w", err)
	}
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock credentials: %w", err)
	}
	defer lock.Unlock() //nolint:errcheck
	return fn()
}

func (s *Store) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
