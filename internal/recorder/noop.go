package recorder

import "KabuArchive/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) BeginRun(_ string, _, _ model.Day) (int64, error) { return 0, nil }
func (n *NoopRecorder) RecordEvent(_ int64, _ *InstrumentEvent) error    { return nil }
func (n *NoopRecorder) FinishRun(_ int64, _ model.Summary) error         { return nil }
func (n *NoopRecorder) Close() error                                     { return nil }
