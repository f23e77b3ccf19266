// Package planner computes the minimal fetch window per instrument.
package planner

import (
	"errors"
	"fmt"

	"KabuArchive/internal/model"
)

// ErrInvalidWindow means the requested global window has start after end.
// A per-instrument window that closes on its own (series already current)
// is not an error; it yields the no-fetch sentinel instead.
var ErrInvalidWindow = errors.New("invalid fetch window")

// Plan returns the inclusive window to request for one instrument.
//
// With no stored series the whole global window [gStart, gEnd] is fetched.
// With a stored series ending at D, the window is [D+1, gEnd]; gStart is
// ignored, updates always resume from the last stored date and never
// re-fetch history. If D >= gEnd the zero Window is returned: no fetch
// needed, the caller must treat it as success with zero new rows.
func Plan(stored model.Series, gStart, gEnd model.Day) (model.Window, error) {
	if gStart.IsZero() || gEnd.IsZero() || gStart.After(gEnd) {
		return model.Window{}, fmt.Errorf("%w: [%s, %s]", ErrInvalidWindow, gStart, gEnd)
	}
	last, ok := stored.LastDate()
	if !ok {
		return model.Window{From: gStart, To: gEnd}, nil
	}
	from := last.Add(1)
	if from.After(gEnd) {
		return model.Window{}, nil
	}
	return model.Window{From: from, To: gEnd}, nil
}
