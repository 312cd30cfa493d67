// Package image normalizes heterogeneous image input into raw bytes plus a
// MIME type, the only shape the provider adapters accept.
package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Image is a normalized in-memory image. It lives only for the duration of
// one turn and is never persisted directly.
type Image struct {
	Data     []byte
	MIMEType string
}

// ErrFetch is returned when a remote image cannot be retrieved
var ErrFetch = fmt.Errorf("image fetch failed")

// extension to MIME type; unknown extensions default to image/jpeg
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

const defaultMIME = "image/jpeg"

// Normalizer converts uploads and stored URLs into Images
type Normalizer struct {
	client       *http.Client
	fetchTimeout time.Duration
}

// NewNormalizer creates a normalizer whose remote fetches are bounded by
// fetchTimeout
func NewNormalizer(fetchTimeout time.Duration) *Normalizer {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Normalizer{
		client:       &http.Client{Timeout: fetchTimeout},
		fetchTimeout: fetchTimeout,
	}
}

// FromBytes normalizes a fresh upload. An empty declared MIME type falls back
// to inference from the filename, then to the default.
func (n *Normalizer) FromBytes(data []byte, declaredMIME, filename string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	mimeType := strings.TrimSpace(declaredMIME)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = MIMEFromPath(filename)
	}

	return &Image{Data: data, MIMEType: mimeType}, nil
}

// FromURL fetches a previously stored image. file:// URLs, as issued by the
// filesystem object store, are read from disk; for remote URLs the response
// Content-Type header wins when present, otherwise the MIME type is inferred
// from the URL path.
func (n *Normalizer) FromURL(ctx context.Context, rawURL string) (*Image, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme == "file" {
		return fromFile(u)
	}

	ctx, cancel := context.WithTimeout(ctx, n.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrFetch)
	}

	mimeType := contentTypeMIME(resp.Header.Get("Content-Type"))
	if mimeType == "" {
		mimeType = mimeFromURL(rawURL)
	}

	return &Image{Data: data, MIMEType: mimeType}, nil
}

// fromFile reads a locally stored object
func fromFile(u *url.URL) (*Image, error) {
	data, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty object", ErrFetch)
	}
	return &Image{Data: data, MIMEType: MIMEFromPath(u.Path)}, nil
}

// MIMEFromPath infers a MIME type from a file path's extension
func MIMEFromPath(p string) string {
	if m, ok := mimeByExt[strings.ToLower(path.Ext(p))]; ok {
		return m
	}
	return defaultMIME
}

func mimeFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultMIME
	}
	return MIMEFromPath(u.Path)
}

// contentTypeMIME extracts a usable image MIME type from a Content-Type
// header value, or returns empty
func contentTypeMIME(header string) string {
	mimeType := strings.TrimSpace(header)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return ""
}
