// Package fetch provides concrete ingestion.Source implementations:
// HTTP JSON endpoints, local JSON files, and a caching decorator.
package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnexpectedPayload is returned when a response is neither a record
	// array nor an object wrapping one.
	ErrUnexpectedPayload = errors.New("unexpected payload shape")
	// ErrAPIMessage is returned when the upstream answers 200 with an error object.
	ErrAPIMessage = errors.New("api returned error message")
)

// APIError is a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, body)
}

// IsRetryable reports whether the request may succeed if repeated.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return !errors.Is(err, ErrAPIMessage) && !errors.Is(err, ErrUnexpectedPayload)
}
