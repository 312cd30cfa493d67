package objstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// extension by MIME type for stored object names
var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// FSStore implements Store on the local filesystem. Objects are laid out as
// <root>/<ownerID>/<timestamp>-<random>.<ext> and addressed with file:// URLs.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at root
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

// Store writes the object and returns its file:// URL
func (s *FSStore) Store(ctx context.Context, data []byte, mimeType, ownerID string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty object data")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	owner := sanitizeOwner(ownerID)
	dir := filepath.Join(s.root, owner)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating owner directory: %w", err)
	}

	ext, ok := extByMIME[mimeType]
	if !ok {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing object: %w", err)
	}

	return "file://" + filepath.ToSlash(path), nil
}

// Delete removes a previously stored object by its URL
func (s *FSStore) Delete(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "file" {
		return fmt.Errorf("not a file URL: %s", rawURL)
	}

	path := filepath.FromSlash(u.Path)
	// Refuse to delete outside the storage root
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return fmt.Errorf("object outside storage root: %s", rawURL)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// sanitizeOwner keeps owner ids safe for use as a directory name
func sanitizeOwner(ownerID string) string {
	owner := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, ownerID)
	if owner == "" {
		owner = "unknown"
	}
	return owner
}
