package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/foodtracker/backend/internal/domain"
)

// DefaultFileName is the cache file created under the user cache directory
const DefaultFileName = "cache.json"

// FileCache persists values in a single JSON file so that they survive
// process restarts. Every write replaces the file atomically.
type FileCache struct {
	path  string
	mutex sync.Mutex
}

// DefaultFilePath returns <user cache dir>/foodtracker/cache.json
func DefaultFilePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache directory: %w", err)
	}
	return filepath.Join(dir, "foodtracker", DefaultFileName), nil
}

// NewFileCache creates a file-backed cache at path, creating its directory
func NewFileCache(path string) (*FileCache, error) {
	if path == "" {
		return nil, errors.New("cache file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileCache{path: path}, nil
}

// Path returns the backing file
func (c *FileCache) Path() string {
	return c.path
}

// Get retrieves a value from the cache file
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entries, err := c.read()
	if err != nil {
		return nil, err
	}
	value, exists := entries[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value and rewrites the cache file
func (c *FileCache) Set(ctx context.Context, key string, value []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entries, err := c.read()
	if err != nil {
		// an unreadable file is replaced rather than blocking every write
		entries = make(map[string][]byte)
	}
	entries[key] = append([]byte(nil), value...)

	return c.write(entries)
}

func (c *FileCache) read() (map[string][]byte, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string][]byte), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}

	entries := make(map[string][]byte)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrCacheFailure, c.path, err)
	}
	return entries, nil
}

func (c *FileCache) write(entries map[string][]byte) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".cache-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheFailure, err)
	}
	return nil
}
