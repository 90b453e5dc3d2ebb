// Package fingerprint computes content digests used as the wardrobe dedup key.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
	"github.com/kirillkom/wardrobe-assistant/internal/core/ports"
)

// ChunkSize bounds how much of an image is held in memory while digesting.
const ChunkSize = 4096

type Fingerprinter struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Fingerprinter {
	return &Fingerprinter{storage: storage}
}

func (f *Fingerprinter) Fingerprint(ctx context.Context, imageLocator string) (string, error) {
	reader, err := f.storage.Open(ctx, imageLocator)
	if err != nil {
		return "", asSourceUnavailable("open image", err)
	}
	defer reader.Close()

	digest, err := Digest(reader)
	if err != nil {
		return "", asSourceUnavailable("read image", err)
	}
	return digest, nil
}

// Digest returns the lowercase hex SHA-256 of everything read from r.
func Digest(r io.Reader) (string, error) {
	hash := sha256.New()
	buf := make([]byte, ChunkSize)
	// Wrapping r hides io.WriterTo so reads stay chunked.
	if _, err := io.CopyBuffer(hash, struct{ io.Reader }{r}, buf); err != nil {
		return "", fmt.Errorf("digest content: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func asSourceUnavailable(operation string, err error) error {
	if domain.IsKind(err, domain.ErrSourceUnavailable) {
		return err
	}
	return domain.WrapError(domain.ErrSourceUnavailable, operation, err)
}
