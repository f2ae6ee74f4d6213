// Package images compresses uploaded restaurant photos and stores them on disk.
package images

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ErrInvalidName is returned for object names that are empty or escape the storage root.
var ErrInvalidName = errors.New("invalid object name")

// Storage keeps image objects under a base directory.
// Object names are slash-separated paths such as "restaurants/1718000000000-ramen.webp".
// Thread-safe for concurrent operations.
type Storage struct {
	basePath  string
	publicURL string
	mu        sync.RWMutex
}

// NewStorage creates a Storage rooted at basePath. publicURL is the server's
// external origin; object URLs are {publicURL}/images/{name}.
func NewStorage(basePath, publicURL string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}

	return &Storage{
		basePath:  basePath,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put writes data under name and returns its public URL.
func (s *Storage) Put(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	p, err := s.Path(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return s.URL(name), nil
}

// Get retrieves the object stored under name.
func (s *Storage) Get(name string) ([]byte, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found for %s: %w", name, err)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Exists reports whether an object is stored under name.
func (s *Storage) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Delete removes an object. Missing objects are not an error.
func (s *Storage) Delete(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Hash returns the hex SHA-256 of an object, used as its ETag.
func (s *Storage) Hash(name string) (string, error) {
	data, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// URL returns the public URL for an object name, percent-encoded so that
// Thai names and spaces survive the round trip through the router.
func (s *Storage) URL(name string) string {
	return s.publicURL + (&url.URL{Path: "/images/" + name}).EscapedPath()
}

// Path returns the filesystem path for an object name.
func (s *Storage) Path(name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") {
		return "", ErrInvalidName
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean != name {
		return "", ErrInvalidName
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}
