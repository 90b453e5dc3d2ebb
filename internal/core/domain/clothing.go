package domain

import "time"

type ClothingRecord struct {
	ID            int64     `json:"id"`
	OwnerID       string    `json:"owner_id"`
	ImageLocator  string    `json:"image_locator"`
	ContentDigest string    `json:"content_digest"`
	Category      string    `json:"category"`
	StyleTag      string    `json:"style_tag,omitempty"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
	Weight        float64   `json:"weight"`
}

// NewClothing is the insert payload; digest and id are assigned by the store.
type NewClothing struct {
	OwnerID       string
	ImageLocator  string
	ContentDigest string
	Category      string
	StyleTag      string
	Confidence    float64
	CreatedAt     time.Time
}

type LabelPrediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type IngestOutcome string

const (
	IngestStored       IngestOutcome = "stored"
	IngestDuplicate    IngestOutcome = "duplicate"
	IngestManualReview IngestOutcome = "manual_review"
)

type IngestResult struct {
	Outcome            IngestOutcome `json:"outcome"`
	ClothingID         int64         `json:"clothing_id,omitempty"`
	IsNew              bool          `json:"is_new"`
	OwnerID            string        `json:"owner_id"`
	ImageLocator       string        `json:"image_locator"`
	Category           string        `json:"category"`
	CategoryConfidence float64       `json:"category_confidence"`
	StyleLabel         string        `json:"style_label"`
	StyleTag           string        `json:"style_tag,omitempty"`
	StyleConfidence    float64       `json:"style_confidence"`
}

type ReinforceOutcome string

const (
	ReinforceApplied  ReinforceOutcome = "applied"
	ReinforceNotFound ReinforceOutcome = "not_found"
)

// UploadEvent is published once an image is stored and awaits classification.
type UploadEvent struct {
	OwnerID      string    `json:"owner_id"`
	ImageLocator string    `json:"image_locator"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Taxonomies are the two disjoint label sets used for the category and style passes.
type Taxonomies struct {
	Categories []string `json:"categories" yaml:"categories"`
	Styles     []string `json:"styles" yaml:"styles"`
}
