package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Sentinels for handlers that answer in JSON. Wrap them to add detail.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("temporarily unavailable")
)

// RespondError maps err onto a problem response. Only not-found, validation
// and bank API messages are echoed; everything else gets a bare title.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, ErrNotFound), backend.IsNotFound(err):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Unavailable", "")
	case errors.Is(err, backend.ErrUnavailable):
		Problem(w, http.StatusBadGateway, "Bank API Unavailable", "")
	case errors.As(err, &apiErr):
		Problem(w, http.StatusUnprocessableEntity, "Rejected", apiErr.Message)
	default:
		Problem(w, http.StatusInternalServerError, "", "")
	}
}
