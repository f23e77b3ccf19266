package fetcher

import (
	"context"
	"errors"

	"KabuArchive/internal/model"
)

// ErrNotFound marks a code the provider does not know: an invalid probe code
// or a delisted instrument. Benign, tallied as skipped.
var ErrNotFound = errors.New("instrument not found")

// ErrTransient marks a failure a later run can recover from: network errors,
// throttling, provider-side 5xx.
var ErrTransient = errors.New("transient provider error")

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsTransient reports whether err is (or wraps) ErrTransient.
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }

// Fetcher fetches daily bars for one instrument over an inclusive date range.
// Implementations return bars sorted ascending by date; a nil/empty slice
// with a nil error means the provider has no rows in the range.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, code string, from, to model.Day) ([]model.Bar, error)
	Name() string
}
