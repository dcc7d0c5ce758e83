package stub

import (
	"context"
	"sync"

	"congress-trade-lab/internal/ingestion"
)

// Source returns fixed in-memory pages for testing.
// Implements ingestion.Source interface.
type Source struct {
	name  string
	pages [][]ingestion.RawRecord
	err   error

	mu    sync.Mutex
	calls []int
}

// NewSource creates a stub source serving the given pages in order.
func NewSource(name string, pages ...[]ingestion.RawRecord) *Source {
	return &Source{name: name, pages: pages}
}

// NewFailingSource creates a stub source whose every fetch fails with err.
func NewFailingSource(name string, err error) *Source {
	return &Source{name: name, err: err}
}

// WithErrorOnPage makes fetches of pages at or beyond page fail with err.
func (s *Source) WithErrorOnPage(page int, err error) *Source {
	s.err = err
	s.pages = s.pages[:min(page, len(s.pages))]
	return s
}

// Name implements ingestion.Source.
func (s *Source) Name() string {
	return s.name
}

// Fetch returns a copy of the requested page. Pages past the end are empty.
func (s *Source) Fetch(ctx context.Context, page int) ([]ingestion.RawRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, page)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page >= len(s.pages) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, nil
	}

	out := make([]ingestion.RawRecord, len(s.pages[page]))
	for i, r := range s.pages[page] {
		c := make(ingestion.RawRecord, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out, nil
}

// Calls returns the pages requested so far, in order.
func (s *Source) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.calls))
	copy(out, s.calls)
	return out
}
