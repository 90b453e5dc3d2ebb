package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
	"github.com/kirillkom/wardrobe-assistant/internal/core/ports"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/resilience"
)

// maxImageBytes is the largest stored image sent to the model.
const maxImageBytes = 16 << 20

type Client struct {
	baseURL     string
	visionModel string
	httpClient  *http.Client
	executor    *resilience.Executor
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithExecutor(exec *resilience.Executor) Option {
	return func(c *Client) { c.executor = exec }
}

func New(baseURL, visionModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		visionModel: visionModel,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classifier asks a vision model to pick one label out of a candidate set.
type Classifier struct {
	client  *Client
	storage ports.ObjectStorage
}

func NewClassifier(client *Client, storage ports.ObjectStorage) *Classifier {
	return &Classifier{client: client, storage: storage}
}

// Classify returns the best candidate label with its confidence. A locator that
// does not resolve, or an answer outside the candidate set, yields a zero
// prediction instead of an error. Storage read failures are returned.
func (c *Classifier) Classify(ctx context.Context, imageLocator string, labels []string) (domain.LabelPrediction, error) {
	if len(labels) == 0 {
		return domain.LabelPrediction{}, domain.WrapError(domain.ErrInvalidInput, "classify image", errors.New("candidate labels are required"))
	}

	image, err := c.loadImage(ctx, imageLocator)
	if err != nil {
		if domain.IsKind(err, domain.ErrSourceUnavailable) {
			slog.Warn("classifier_image_unavailable", "image_locator", imageLocator, "error", err)
			return domain.LabelPrediction{}, nil
		}
		return domain.LabelPrediction{}, err
	}

	raw, err := c.client.generateVision(ctx, buildLabelPrompt(labels), image)
	if err != nil {
		return domain.LabelPrediction{}, err
	}

	var answer struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &answer); err != nil {
		return domain.LabelPrediction{}, fmt.Errorf("parse label json: %w", err)
	}

	label, ok := matchLabel(answer.Label, labels)
	if !ok {
		slog.Warn("classifier_unknown_label", "image_locator", imageLocator, "label", answer.Label)
		return domain.LabelPrediction{}, nil
	}
	return domain.LabelPrediction{Label: label, Confidence: clamp01(answer.Confidence)}, nil
}

func (c *Classifier) loadImage(ctx context.Context, imageLocator string) (string, error) {
	rc, err := c.storage.Open(ctx, imageLocator)
	if err != nil {
		if domain.IsKind(err, domain.ErrSourceUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("open image: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "read image", fmt.Errorf("image exceeds %d bytes", maxImageBytes))
	}
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrSourceUnavailable, "read image", errors.New("image is empty"))
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (c *Client) generateVision(ctx context.Context, prompt, imageB64 string) (string, error) {
	reqBody := map[string]any{
		"model":  c.visionModel,
		"prompt": prompt,
		"images": []string{imageB64},
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": 0,
		},
	}

	var response struct {
		Response string `json:"response"`
	}
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, "generate")
	}
	if err := c.executor.Execute(ctx, "ollama.generate", call, classifyOllamaError); err != nil {
		return "", resilience.AsTemporary("ollama generate", err, classifyOllamaError)
	}
	return strings.TrimSpace(response.Response), nil
}

// matchLabel maps the model answer back onto a candidate, tolerating case and
// surrounding whitespace.
func matchLabel(answer string, labels []string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}
	for _, l := range labels {
		if l == answer {
			return l, true
		}
	}
	for _, l := range labels {
		if strings.EqualFold(l, answer) {
			return l, true
		}
	}
	return "", false
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
