package httpadapter

import (
	"net/http"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrNoKnowledge):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
