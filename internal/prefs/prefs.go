// Package prefs stores small user preferences (volume levels, selected
// language) in a YAML file. Every Set is written through immediately.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/stagehand/internal/logging"
)

// FileName is the default preferences file name.
const FileName = "prefs.yaml"

// Store is a persisted key-value map.
type Store struct {
	fs     afero.Fs
	path   string
	logger *logging.Logger

	mu     sync.RWMutex
	values map[string]any
}

// Open loads the store at path on fs. A missing file yields an empty store.
func Open(fs afero.Fs, path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Store{
		fs:     fs,
		path:   path,
		logger: logger.WithComponent("prefs"),
		values: make(map[string]any),
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case os.IsNotExist(err):
		s.logger.Debug("no preferences file, starting empty", "path", path)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read preferences %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.logger.Debug("preferences loaded", "path", path, "keys", len(s.values))
	return s, nil
}

// Memory returns a store backed by an in-memory filesystem.
func Memory(logger *logging.Logger) *Store {
	s, _ := Open(afero.NewMemMapFs(), FileName, logger)
	return s
}

// Path returns the file the store persists to.
func (s *Store) Path() string { return s.path }

// Get returns the raw value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Float64 returns key as a float64, or def when it is missing or not numeric.
func (s *Store) Float64(key string, def float64) float64 {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		s.logger.Warn("ignoring non-numeric preference", "key", key, "value", fmt.Sprint(v))
		return def
	}
	return f
}

// String returns key as a string, or def when it is missing or empty.
func (s *Store) String(key, def string) string {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	str := cast.ToString(v)
	if str == "" {
		return def
	}
	return str
}

// Set stores value under key and persists the store.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	data, err := yaml.Marshal(s.values)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return s.write(data)
}

// Keys returns the stored keys, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// write replaces the file atomically via a temporary sibling.
func (s *Store) write(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
