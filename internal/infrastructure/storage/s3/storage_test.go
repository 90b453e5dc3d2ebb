package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

// fakeS3 serves the path-style subset of the S3 API the storage uses.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  bool
	denyGet bool
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if len(parts) == 1 || parts[1] == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.bucket {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodPut:
			f.bucket = true
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	key := parts[1]
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		if f.denyGet {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
			return
		}
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStorage(t *testing.T) (*Storage, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	fake := &fakeS3{objects: map[string][]byte{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	s, err := New(context.Background(), Config{
		Region:    "us-east-1",
		Bucket:    "wardrobe",
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  server.URL,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, fake
}

func TestNewCreatesMissingBucket(t *testing.T) {
	_, fake := newTestStorage(t)
	if !fake.bucket {
		t.Fatalf("expected bucket to be created")
	}
}

func TestSaveAndOpen(t *testing.T) {
	s, fake := newTestStorage(t)

	if err := s.Save(context.Background(), "abc_test.jpg", strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if string(fake.objects["abc_test.jpg"]) != "jpeg-bytes" {
		t.Fatalf("unexpected stored object %q", fake.objects["abc_test.jpg"])
	}

	rc, err := s.Open(context.Background(), "abc_test.jpg")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "jpeg-bytes" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestOpenMissingIsSourceUnavailable(t *testing.T) {
	s, _ := newTestStorage(t)
	_, err := s.Open(context.Background(), "missing.jpg")
	if !domain.IsKind(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestSaveRequiresKey(t *testing.T) {
	s, _ := newTestStorage(t)
	if err := s.Save(context.Background(), "", strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestOpenBackendFailureIsNotSourceUnavailable(t *testing.T) {
	s, fake := newTestStorage(t)
	fake.mu.Lock()
	fake.objects["abc_test.jpg"] = []byte("jpeg-bytes")
	fake.denyGet = true
	fake.mu.Unlock()

	_, err := s.Open(context.Background(), "abc_test.jpg")
	if err == nil {
		t.Fatalf("expected error for denied get")
	}
	if domain.IsKind(err, domain.ErrSourceUnavailable) {
		t.Fatalf("backend failure must not look like a missing object: %v", err)
	}
}

func TestDeleteRemovesObjectAndIgnoresMissing(t *testing.T) {
	s, fake := newTestStorage(t)
	if err := s.Save(context.Background(), "abc_test.jpg", strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Delete(context.Background(), "abc_test.jpg"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := fake.objects["abc_test.jpg"]; ok {
		t.Fatalf("expected object to be removed")
	}
	if err := s.Delete(context.Background(), "abc_test.jpg"); err != nil {
		t.Fatalf("Delete() of missing object error = %v", err)
	}
}
