// Package storage owns the texture file store: saving uploaded face images
// under the storage root and resolving the relative paths kept in the
// database against the public storage base URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is a disk-backed texture store.
type Store struct {
	root    string
	baseURL string
}

// New creates a store rooted at dir. baseURL is the public prefix texture
// paths resolve against (normalized to end with a slash).
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Store{root: dir, baseURL: normalizeBase(baseURL)}, nil
}

func normalizeBase(base string) string {
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// Root returns the on-disk storage root, for static file serving.
func (s *Store) Root() string { return s.root }

// SaveTexture writes one face image under plan-items/<id>/ and returns its
// relative storage path. The stored name is minted fresh; the original
// filename only contributes its extension.
func (s *Store) SaveTexture(planItemID int64, field, origName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	if ext == "" {
		ext = ".jpg"
	}
	rel := path.Join("plan-items", fmt.Sprintf("%d", planItemID),
		fmt.Sprintf("%s_%s%s", field, uuid.NewString()[:8], ext))

	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("storage: write %s: %w", rel, err)
	}
	return rel, nil
}

// RemoveItem deletes all stored textures of a plan item.
func (s *Store) RemoveItem(planItemID int64) error {
	return os.RemoveAll(filepath.Join(s.root, "plan-items", fmt.Sprintf("%d", planItemID)))
}

// BuildURL resolves a relative texture path against the storage base URL.
// Empty paths resolve to an empty URL.
func (s *Store) BuildURL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(rel, "/")
}

// Fetch reads a stored texture by its relative path, satisfying the
// texture loader's Fetcher for in-process rendering.
func (s *Store) Fetch(_ context.Context, ref string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	if strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("storage: invalid path %q", ref)
	}
	return os.ReadFile(filepath.Join(s.root, clean))
}
