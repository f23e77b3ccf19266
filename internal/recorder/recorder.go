package recorder

import "KabuArchive/internal/model"

// InstrumentEvent is one per-instrument outcome within a run.
type InstrumentEvent struct {
	Code    string
	Outcome model.OutcomeKind
	NewRows int
	Reason  string // error text for skipped/failed outcomes
}

// Recorder persists the run log for later inspection. Recording failures
// are logged and ignored by callers; the archive itself never depends on
// the run log.
type Recorder interface {
	BeginRun(mode string, start, end model.Day) (runID int64, err error)
	RecordEvent(runID int64, evt *InstrumentEvent) error
	FinishRun(runID int64, sum model.Summary) error
	Close() error
}
