package model

import "fmt"

// Window is an inclusive fetch date range. The zero Window is the
// "no fetch needed" sentinel returned when a series is already current.
type Window struct {
	From Day
	To   Day
}

// None reports whether the window is the no-fetch sentinel.
func (w Window) None() bool { return w.From.IsZero() && w.To.IsZero() }

func (w Window) String() string {
	if w.None() {
		return "(none)"
	}
	return fmt.Sprintf("[%s, %s]", w.From, w.To)
}
