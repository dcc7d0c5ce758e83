package fetch

import (
	"context"
	"fmt"
	"os"

	"congress-trade-lab/internal/ingestion"
)

// FileSource serves records from a local JSON file as a single page.
// Used for static fallback datasets and fixtures.
type FileSource struct {
	name string
	path string
}

var _ ingestion.Source = (*FileSource)(nil)

// NewFileSource creates a file-backed source.
func NewFileSource(name, path string) *FileSource {
	return &FileSource{name: name, path: path}
}

// Name implements ingestion.Source.
func (s *FileSource) Name() string {
	return s.name
}

// Fetch implements ingestion.Source. Pages after the first are empty.
func (s *FileSource) Fetch(ctx context.Context, page int) ([]ingestion.RawRecord, error) {
	if page > 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return DecodeRecords(data)
}
