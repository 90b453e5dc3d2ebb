package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/wardrobe-assistant/internal/config"
	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
	"github.com/kirillkom/wardrobe-assistant/internal/core/ports"
	"github.com/kirillkom/wardrobe-assistant/internal/observability/metrics"
)

const metricsService = "api"

type Router struct {
	cfg         config.Config
	ingestor    ports.ClothingIngestor
	recommender ports.Recommender
	reader      ports.ClothingReader
	metrics     *metrics.HTTPServerMetrics
}

type RouterOption func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) { rt.metrics = m }
}

func NewRouter(
	cfg config.Config,
	ingestor ports.ClothingIngestor,
	recommender ports.Recommender,
	reader ports.ClothingReader,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		cfg:         cfg,
		ingestor:    ingestor,
		recommender: recommender,
		reader:      reader,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Handler wires the routes. Traffic control applies to /v1 only so health
// and metrics stay reachable under load.
func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/wardrobe/items", rt.uploadItem)
	api.HandleFunc("POST /v1/wardrobe/uploads", rt.enqueueUpload)
	api.HandleFunc("GET /v1/wardrobe/items/{id}", rt.getItem)
	api.HandleFunc("POST /v1/wardrobe/items/{id}/select", rt.selectItem)
	api.HandleFunc("GET /v1/wardrobe/recommendations", rt.recommend)

	wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
	var limited http.Handler = backpressureMiddleware(api, rt.cfg.APIMaxInFlight, wait, rt.recordRejected)
	limited = rateLimitMiddleware(limited, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.recordRejected)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("/v1/", limited)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = accessLogMiddleware(mux)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadItem(w http.ResponseWriter, r *http.Request) {
	upload, err := readImageUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer upload.Close()

	result, err := rt.ingestor.Upload(r.Context(), upload.ownerID, upload.filename, upload.body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordIngest(metricsService, string(result.Outcome))
	}

	status := http.StatusCreated
	switch result.Outcome {
	case domain.IngestDuplicate:
		status = http.StatusOK
	case domain.IngestManualReview:
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

func (rt *Router) enqueueUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := readImageUpload(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer upload.Close()

	event, err := rt.ingestor.Enqueue(r.Context(), upload.ownerID, upload.filename, upload.body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, event)
}

func (rt *Router) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	record, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (rt *Router) selectItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	outcome, err := rt.recommender.OnSelect(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSelection(metricsService, string(outcome))
	}

	resp := map[string]any{"id": id, "outcome": outcome}
	if outcome == domain.ReinforceNotFound {
		resp["error"] = "clothing not found"
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ownerID := strings.TrimSpace(query.Get("owner_id"))
	if ownerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "owner_id is required"})
		return
	}
	style := query.Get("style")

	items, err := rt.recommender.Recommend(r.Context(), ownerID, style)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRecommendation(metricsService, style != "", len(items))
	}
	if items == nil {
		items = []domain.ClothingRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"owner_id": ownerID,
		"style":    style,
		"items":    items,
	})
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(metricsService, reason)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		writeJSON(w, ue.status, map[string]string{"error": ue.msg})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
