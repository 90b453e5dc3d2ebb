package httpadapter

import (
	"net/http"

	"github.com/kirillkom/wardrobe-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrClothingNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrSourceUnavailable), domain.IsKind(err, domain.ErrDigestUnavailable):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal failure detail behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	if status >= 500 {
		if status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
		logRequestError(r, status, err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
