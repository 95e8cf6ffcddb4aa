// Package settings persists the reader's navigation state as string
// key/value pairs.
package settings

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"
)

// Values is a snapshot of persisted keys.
type Values map[string]string

// String returns def when the key is missing or empty.
func (v Values) String(key, def string) string {
	if s, ok := v[key]; ok && s != "" {
		return s
	}
	return def
}

// Int returns def when the key is missing or not a number.
func (v Values) Int(key string, def int) int {
	n, err := strconv.Atoi(v[key])
	if err != nil {
		return def
	}
	return n
}

// Store loads and saves values. Save merges into what is already stored.
type Store interface {
	Load() (Values, error)
	Save(Values) error
}

// DefaultPath is state.json under the user config directory.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "quran-tui", "state.json"), nil
}

// FileStore keeps values in a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Values, error) {
	v := Values{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		// No file yet means nothing saved.
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return v, err
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return Values{}, err
	}
	return v, nil
}

func (s *FileStore) Save(update Values) error {
	current, err := s.Load()
	if err != nil {
		return err
	}
	maps.Copy(current, update)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}
