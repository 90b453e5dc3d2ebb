package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

func TestEventRoundTripKeepsFields(t *testing.T) {
	in := domain.UploadEvent{OwnerID: "henry", ImageLocator: "abc_test.jpg", UploadedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	data, err := encodeEvent(in)
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	out, err := decodeEvent(data)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if out.OwnerID != in.OwnerID || out.ImageLocator != in.ImageLocator || !out.UploadedAt.Equal(in.UploadedAt) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDecodeEventRejectsIncompletePayload(t *testing.T) {
	cases := map[string]string{
		"not json":      `owner=henry`,
		"missing owner": `{"image_locator":"a.jpg"}`,
		"missing image": `{"owner_id":"henry"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeEvent([]byte(payload)); err == nil {
				t.Fatalf("expected error for %s", payload)
			}
		})
	}
}

func TestClassifyNATSError(t *testing.T) {
	if v := classifyNATSError(nats.ErrNoServers); !v.Retry || !v.Trip {
		t.Fatalf("no servers should retry and trip, got %+v", v)
	}
	if v := classifyNATSError(gobreaker.ErrOpenState); !v.Retry {
		t.Fatalf("open breaker should be retryable, got %+v", v)
	}
	if v := classifyNATSError(context.Canceled); v.Retry || v.Trip {
		t.Fatalf("cancellation must neither retry nor trip, got %+v", v)
	}
	if v := classifyNATSError(errors.New("bad subject")); v.Retry {
		t.Fatalf("unknown errors must not retry, got %+v", v)
	}
}
