package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FilePublisher writes objects into a local directory.
// Writes go to a temp file in the same directory and are renamed into place,
// so readers never observe a partially written file.
type FilePublisher struct {
	dir  string
	perm os.FileMode
}

// NewFilePublisher creates a publisher rooted at dir. The directory is created on first publish.
func NewFilePublisher(dir string) *FilePublisher {
	return &FilePublisher{dir: dir, perm: 0o644}
}

// Dir returns the output directory.
func (p *FilePublisher) Dir() string {
	return p.dir
}

// Publish implements Publisher.
func (p *FilePublisher) Publish(ctx context.Context, obj Object) (string, error) {
	if obj.Name == "" || filepath.Base(obj.Name) != obj.Name {
		return "", ErrInvalidObject
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(p.dir, "."+obj.Name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(obj.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, p.perm); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	dest := filepath.Join(p.dir, obj.Name)
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}
	return dest, nil
}

var _ Publisher = (*FilePublisher)(nil)
