// Package objstore stores uploaded image binaries and hands back durable URLs
package objstore

import "context"

// Store persists binary objects outside the database
type Store interface {
	// Store writes the object and returns a durable URL for it
	Store(ctx context.Context, data []byte, mimeType, ownerID string) (string, error)

	// Delete removes a previously stored object by its URL
	Delete(ctx context.Context, url string) error
}
