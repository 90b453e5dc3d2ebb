package httpadapter

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/wardrobe-assistant/internal/config"
	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type ingestorFake struct {
	outcome  domain.IngestOutcome
	err      error
	gotOwner string
	gotName  string
	gotBody  []byte
}

func (f *ingestorFake) Ingest(context.Context, string, string) (*domain.IngestResult, error) {
	return nil, f.err
}

func (f *ingestorFake) Upload(_ context.Context, ownerID, filename string, body io.Reader) (*domain.IngestResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.gotOwner, f.gotName, f.gotBody = ownerID, filename, raw
	return &domain.IngestResult{
		Outcome:    f.outcome,
		ClothingID: 1,
		IsNew:      f.outcome == domain.IngestStored,
		OwnerID:    ownerID,
		Category:   "t-shirt",
		StyleTag:   "sports",
	}, nil
}

func (f *ingestorFake) Enqueue(_ context.Context, ownerID, filename string, body io.Reader) (*domain.UploadEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := io.ReadAll(body)
	f.gotOwner, f.gotName, f.gotBody = ownerID, filename, raw
	return &domain.UploadEvent{OwnerID: ownerID, ImageLocator: "key_" + filename, UploadedAt: time.Now().UTC()}, nil
}

type recommenderFake struct {
	items     []domain.ClothingRecord
	outcome   domain.ReinforceOutcome
	err       error
	gotOwner  string
	gotStyle  string
	gotSelect int64
}

func (f *recommenderFake) Recommend(_ context.Context, ownerID, style string) ([]domain.ClothingRecord, error) {
	f.gotOwner, f.gotStyle = ownerID, style
	return f.items, f.err
}

func (f *recommenderFake) OnSelect(_ context.Context, id int64) (domain.ReinforceOutcome, error) {
	f.gotSelect = id
	return f.outcome, f.err
}

type readerFake struct {
	err error
}

func (f readerFake) GetByID(_ context.Context, id int64) (*domain.ClothingRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ClothingRecord{ID: id, OwnerID: "henry", Category: "t-shirt", StyleTag: "sports", Weight: 1}, nil
}

func newTestHandler(cfg config.Config, ing *ingestorFake, rec *recommenderFake, reader readerFake) http.Handler {
	if ing == nil {
		ing = &ingestorFake{outcome: domain.IngestStored}
	}
	if rec == nil {
		rec = &recommenderFake{outcome: domain.ReinforceApplied}
	}
	return NewRouter(cfg, ing, rec, reader).Handler()
}

func multipartUpload(t *testing.T, path, ownerID, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if ownerID != "" {
		if err := writer.WriteField("owner_id", ownerID); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if content != nil {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
