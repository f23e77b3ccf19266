package model

import "fmt"

// OutcomeKind classifies the result of reconciling one instrument.
type OutcomeKind string

const (
	// OutcomeUpdated means new rows were merged and the series rewritten.
	OutcomeUpdated OutcomeKind = "UPDATED"
	// OutcomeUnchanged means the series was already current or the provider
	// returned no rows in the window.
	OutcomeUnchanged OutcomeKind = "UNCHANGED"
	// OutcomeSkipped means the provider does not know the code (invalid or
	// delisted). Expected, given the probe fallback tier.
	OutcomeSkipped OutcomeKind = "SKIPPED"
	// OutcomeFailed means a transient provider or store error; the stored
	// series is untouched and the next run will retry naturally.
	OutcomeFailed OutcomeKind = "FAILED"
)

// Outcome is the per-instrument result collected by the run coordinator.
type Outcome struct {
	Kind    OutcomeKind
	NewRows int   // rows added, only meaningful for OutcomeUpdated
	Err     error // reason, only set for OutcomeSkipped and OutcomeFailed
}

func Updated(newRows int) Outcome { return Outcome{Kind: OutcomeUpdated, NewRows: newRows} }
func Unchanged() Outcome          { return Outcome{Kind: OutcomeUnchanged} }
func Skipped(err error) Outcome   { return Outcome{Kind: OutcomeSkipped, Err: err} }
func Failed(err error) Outcome    { return Outcome{Kind: OutcomeFailed, Err: err} }

// Summary accumulates outcome counts for one run.
type Summary struct {
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
	NewRows   int
}

// Add tallies one outcome.
func (s *Summary) Add(o Outcome) {
	switch o.Kind {
	case OutcomeUpdated:
		s.Updated++
		s.NewRows += o.NewRows
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Total returns the number of instruments tallied.
func (s Summary) Total() int { return s.Updated + s.Unchanged + s.Skipped + s.Failed }

func (s Summary) String() string {
	return fmt.Sprintf("updated=%d (%d rows) unchanged=%d skipped=%d failed=%d",
		s.Updated, s.NewRows, s.Unchanged, s.Skipped, s.Failed)
}
