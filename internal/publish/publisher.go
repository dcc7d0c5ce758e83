// Package publish writes run outputs to their destinations.
package publish

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidObject is returned for objects without a name.
var ErrInvalidObject = errors.New("invalid object: name is required")

// Object is one output file of a run.
type Object struct {
	Name        string // file name or key suffix, e.g. "congress-trades.json"
	ContentType string
	Data        []byte
}

// Publisher stores objects. Publish returns where the object was written.
type Publisher interface {
	Publish(ctx context.Context, obj Object) (string, error)
}

// Multi publishes to every publisher in order and stops at the first failure.
type Multi []Publisher

// Publish implements Publisher. The returned location is the first publisher's.
func (m Multi) Publish(ctx context.Context, obj Object) (string, error) {
	var first string
	for i, p := range m {
		loc, err := p.Publish(ctx, obj)
		if err != nil {
			return "", fmt.Errorf("publish %s: %w", obj.Name, err)
		}
		if i == 0 {
			first = loc
		}
	}
	return first, nil
}

var _ Publisher = Multi(nil)
