package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

type memoryRepoFake struct {
	mu       sync.Mutex
	nextID   int64
	records  []domain.ClothingRecord
	inserts  int
	err      error
	lastLim  int
	lastFilt string
}

func (f *memoryRepoFake) InsertIfAbsent(_ context.Context, item domain.NewClothing) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, false, f.err
	}
	for _, rec := range f.records {
		if rec.ContentDigest == item.ContentDigest {
			return rec.ID, false, nil
		}
	}
	f.nextID++
	f.inserts++
	f.records = append(f.records, domain.ClothingRecord{
		ID:            f.nextID,
		OwnerID:       item.OwnerID,
		ImageLocator:  item.ImageLocator,
		ContentDigest: item.ContentDigest,
		Category:      item.Category,
		StyleTag:      item.StyleTag,
		Confidence:    item.Confidence,
		CreatedAt:     item.CreatedAt,
		Weight:        1.0,
	})
	return f.nextID, true, nil
}

func (f *memoryRepoFake) GetByID(_ context.Context, id int64) (*domain.ClothingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ID == id {
			copyRec := rec
			return &copyRec, nil
		}
	}
	return nil, domain.WrapError(domain.ErrClothingNotFound, "get clothing", errors.New("missing"))
}

func (f *memoryRepoFake) QueryByOwner(_ context.Context, ownerID, styleFilter string, limit int) ([]domain.ClothingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLim = limit
	f.lastFilt = styleFilter
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ClothingRecord
	for _, rec := range f.records {
		if rec.OwnerID != ownerID {
			continue
		}
		if styleFilter != "" && !strings.Contains(rec.StyleTag, styleFilter) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *memoryRepoFake) AddWeight(_ context.Context, id int64, delta float64) (domain.ReinforceOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Weight += delta
			return domain.ReinforceApplied, nil
		}
	}
	return domain.ReinforceNotFound, nil
}

type fingerprintFake struct {
	digests map[string]string
}

func (f *fingerprintFake) Fingerprint(_ context.Context, imageLocator string) (string, error) {
	digest, ok := f.digests[imageLocator]
	if !ok {
		return "", domain.WrapError(domain.ErrSourceUnavailable, "open image", errors.New("no such file"))
	}
	return digest, nil
}

type classifierFake struct {
	mu          sync.Mutex
	byFirstLbl  map[string]domain.LabelPrediction
	err         error
	calls       int
	lastLocator string
}

func (f *classifierFake) Classify(_ context.Context, imageLocator string, labels []string) (domain.LabelPrediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastLocator = imageLocator
	if f.err != nil {
		return domain.LabelPrediction{}, f.err
	}
	if len(labels) == 0 {
		return domain.LabelPrediction{}, nil
	}
	return f.byFirstLbl[labels[0]], nil
}

type storageFake struct {
	files   map[string][]byte
	err     error
	deleted []string
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.files[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrSourceUnavailable, "open image", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.files, key)
	return nil
}

type queueFake struct {
	events []domain.UploadEvent
	err    error
}

func (f *queueFake) PublishClothingUploaded(_ context.Context, event domain.UploadEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *queueFake) SubscribeClothingUploaded(context.Context, func(context.Context, domain.UploadEvent) error) error {
	return errors.New("not implemented")
}
