// Package watermark persists the id of the last candidate delivered by the
// notifier.
package watermark

import (
	"context"
	"fmt"
)

// Store loads and saves the delivery watermark. Load returns 0 when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, id int64) error
}

// Error wraps a failed watermark read or write.
type Error struct {
	Op       string
	Location string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s watermark at %s: %v", e.Op, e.Location, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
