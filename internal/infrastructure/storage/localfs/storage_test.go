package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

func TestSaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "images"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "abc_test.jpg", strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
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

	entries, _ := os.ReadDir(filepath.Join(dir, "images"))
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestOpenMissingIsSourceUnavailable(t *testing.T) {
	s, _ := New(t.TempDir())
	_, err := s.Open(context.Background(), "missing.jpg")
	if !domain.IsKind(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestRejectsKeysOutsideBase(t *testing.T) {
	s, _ := New(t.TempDir())
	for _, key := range []string{"", "../escape.jpg", "/etc/passwd", "a/../../escape.jpg"} {
		if err := s.Save(context.Background(), key, strings.NewReader("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("Save(%q) expected invalid input, got %v", key, err)
		}
		if _, err := s.Open(context.Background(), key); !domain.IsKind(err, domain.ErrSourceUnavailable) {
			t.Fatalf("Open(%q) expected source unavailable, got %v", key, err)
		}
	}
}

func TestNestedKeys(t *testing.T) {
	s, _ := New(t.TempDir())
	if err := s.Save(context.Background(), "data/test.jpg", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := s.Open(context.Background(), "data/test.jpg")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = rc.Close()
}

func TestDeleteRemovesFileAndIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	s, _ := New(dir)
	if err := s.Save(context.Background(), "abc_test.jpg", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Delete(context.Background(), "abc_test.jpg"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc_test.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err = %v", err)
	}
	if err := s.Delete(context.Background(), "abc_test.jpg"); err != nil {
		t.Fatalf("Delete() of missing file error = %v", err)
	}
	if err := s.Delete(context.Background(), "../escape.jpg"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for escaping key, got %v", err)
	}
}
