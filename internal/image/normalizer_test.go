package image

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMIMEFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"diagram.png", "image/png"},
		{"anim.gif", "image/gif"},
		{"modern.webp", "image/webp"},
		{"old.bmp", "image/bmp"},
		{"unknown.tiff", "image/jpeg"}, // unknown extension defaults to jpeg
		{"noextension", "image/jpeg"},
		{"", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := MIMEFromPath(tt.path); got != tt.expected {
				t.Errorf("MIMEFromPath(%q) = %q; want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestFromBytes(t *testing.T) {
	n := NewNormalizer(time.Second)

	img, err := n.FromBytes([]byte{0xFF, 0xD8}, "image/png", "upload.jpg")
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}
	// Declared MIME wins over the filename
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q; want image/png", img.MIMEType)
	}

	img, err = n.FromBytes([]byte{0xFF, 0xD8}, "", "upload.webp")
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}
	if img.MIMEType != "image/webp" {
		t.Errorf("MIMEType = %q; want image/webp (from filename)", img.MIMEType)
	}

	if _, err := n.FromBytes(nil, "image/png", "x.png"); err == nil {
		t.Error("FromBytes() with empty data should fail")
	}
}

func TestFromURLHeaderWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("pngdata"))
	}))
	defer srv.Close()

	n := NewNormalizer(2 * time.Second)
	img, err := n.FromURL(context.Background(), srv.URL+"/stored.jpg")
	if err != nil {
		t.Fatalf("FromURL() error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q; want image/png (header over extension)", img.MIMEType)
	}
	if string(img.Data) != "pngdata" {
		t.Errorf("Data = %q; want pngdata", img.Data)
	}
}

func TestFromURLExtensionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("webpdata"))
	}))
	defer srv.Close()

	n := NewNormalizer(2 * time.Second)
	img, err := n.FromURL(context.Background(), srv.URL+"/stored.webp")
	if err != nil {
		t.Fatalf("FromURL() error: %v", err)
	}
	if img.MIMEType != "image/webp" {
		t.Errorf("MIMEType = %q; want image/webp (from URL extension)", img.MIMEType)
	}
}

func TestFromURLFileScheme(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "stored.png")
	if err := os.WriteFile(p, []byte("pngdata"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	n := NewNormalizer(time.Second)
	img, err := n.FromURL(context.Background(), "file://"+filepath.ToSlash(p))
	if err != nil {
		t.Fatalf("FromURL() error: %v", err)
	}
	if string(img.Data) != "pngdata" {
		t.Errorf("Data = %q; want pngdata", img.Data)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q; want image/png", img.MIMEType)
	}
}

func TestFromURLFileSchemeMissing(t *testing.T) {
	n := NewNormalizer(time.Second)
	_, err := n.FromURL(context.Background(), "file://"+filepath.ToSlash(filepath.Join(t.TempDir(), "gone.png")))
	if !errors.Is(err, ErrFetch) {
		t.Errorf("FromURL() error = %v; want ErrFetch", err)
	}
}

func TestFromURLNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	n := NewNormalizer(2 * time.Second)
	_, err := n.FromURL(context.Background(), srv.URL+"/missing.jpg")
	if !errors.Is(err, ErrFetch) {
		t.Errorf("FromURL() error = %v; want ErrFetch", err)
	}
}

func TestFromURLTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	n := NewNormalizer(50 * time.Millisecond)
	_, err := n.FromURL(context.Background(), srv.URL+"/slow.jpg")
	if !errors.Is(err, ErrFetch) {
		t.Errorf("FromURL() error = %v; want ErrFetch", err)
	}
}
