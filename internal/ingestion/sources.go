package ingestion

import (
	"context"
	"fmt"
)

// Source provides raw disclosure records from one upstream.
type Source interface {
	// Name identifies the source in logs, metrics and errors.
	Name() string
	// Fetch returns the records on the given zero-based page.
	// An empty result means there are no more pages.
	Fetch(ctx context.Context, page int) ([]RawRecord, error)
}

// SourceError reports a failure of one source. The run continues without it.
type SourceError struct {
	Source string
	Page   int
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s page %d: %v", e.Source, e.Page, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError wraps err with source context.
func NewSourceError(source string, page int, err error) *SourceError {
	return &SourceError{Source: source, Page: page, Err: err}
}
