package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable wraps transport failures: refused connections, timeouts, undecodable bodies.
var ErrUnavailable = errors.New("backend unavailable")

// APIError is returned for every non-2xx response.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("backend: %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// UserMessage exposes the message the bank API put in its error body.
func (e *APIError) UserMessage() string {
	return e.Message
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseErrorMessage extracts {"error": ...} or {"message": ...} from a response body.
func parseErrorMessage(body []byte) string {
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Message)
}

// Message returns the backend supplied message for err, or fallback when there is none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsNotFound reports whether the API answered 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
