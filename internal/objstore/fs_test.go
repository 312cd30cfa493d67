package objstore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreAndDelete(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}
	ctx := context.Background()

	storedURL, err := s.Store(ctx, []byte("imagedata"), "image/png", "user-1")
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if !strings.HasPrefix(storedURL, "file://") {
		t.Errorf("URL = %q; want file:// scheme", storedURL)
	}
	if !strings.HasSuffix(storedURL, ".png") {
		t.Errorf("URL = %q; want .png extension for image/png", storedURL)
	}
	if !strings.Contains(storedURL, "/user-1/") {
		t.Errorf("URL = %q; want owner-scoped path", storedURL)
	}

	u, err := url.Parse(storedURL)
	if err != nil {
		t.Fatalf("parsing stored URL: %v", err)
	}
	data, err := os.ReadFile(filepath.FromSlash(u.Path))
	if err != nil {
		t.Fatalf("reading stored object: %v", err)
	}
	if string(data) != "imagedata" {
		t.Errorf("stored data = %q; want imagedata", data)
	}

	if err := s.Delete(ctx, storedURL); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(filepath.FromSlash(u.Path)); !os.IsNotExist(err) {
		t.Error("object still exists after Delete()")
	}
}

func TestStoreUnknownMIMEDefaultsToJPG(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	storedURL, err := s.Store(context.Background(), []byte("x"), "image/tiff", "user-1")
	if err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if !strings.HasSuffix(storedURL, ".jpg") {
		t.Errorf("URL = %q; want .jpg for unknown MIME", storedURL)
	}
}

func TestStoreEmptyData(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	if _, err := s.Store(context.Background(), nil, "image/png", "user-1"); err == nil {
		t.Error("Store() with empty data should fail")
	}
}

func TestDeleteOutsideRoot(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error: %v", err)
	}

	if err := s.Delete(context.Background(), "file:///etc/passwd"); err == nil {
		t.Error("Delete() outside the storage root should fail")
	}
}

func TestSanitizeOwner(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"user-1", "user-1"},
		{"../../evil", "______evil"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		if got := sanitizeOwner(tt.in); got != tt.expected {
			t.Errorf("sanitizeOwner(%q) = %q; want %q", tt.in, got, tt.expected)
		}
	}
}
