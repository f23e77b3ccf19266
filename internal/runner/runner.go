// Package runner drives one archive run over the whole universe.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"KabuArchive/internal/model"
	"KabuArchive/internal/reconcile"
	"KabuArchive/internal/recorder"
	"KabuArchive/internal/universe"
)

// Params select what one run does. Mode is recorded in the run log only;
// backfill and update share the same reconcile path, since the planner
// already resumes from the last stored date whenever a series exists.
type Params struct {
	Mode         string // "backfill" or "update"
	Start        model.Day
	End          model.Day
	ForceRefresh bool // bypass the roster cache tier
}

// Runner iterates the resolved universe sequentially, one instrument at a
// time. Pacing between provider calls lives in the fetcher the reconciler
// was built with.
type Runner struct {
	Resolver   *universe.Resolver
	Reconciler *reconcile.Reconciler
	Recorder   recorder.Recorder
}

// New creates a Runner.
func New(res *universe.Resolver, rec *reconcile.Reconciler, runLog recorder.Recorder) *Runner {
	return &Runner{Resolver: res, Reconciler: rec, Recorder: runLog}
}

// Run resolves the universe and reconciles every instrument in order.
// Per-instrument failures are tallied, never fatal. The returned error is
// non-nil only when no universe could be resolved at all or the run was
// cancelled; the summary is valid either way.
func (r *Runner) Run(ctx context.Context, p Params) (model.Summary, error) {
	log := logrus.WithField("component", "runner")
	started := time.Now()

	insts, err := r.Resolver.Resolve(ctx, p.ForceRefresh)
	if err != nil {
		return model.Summary{}, fmt.Errorf("resolve universe: %w", err)
	}
	log.WithFields(logrus.Fields{
		"mode": p.Mode, "instruments": len(insts), "start": p.Start.String(), "end": p.End.String(),
	}).Info("run starting")

	runID, err := r.Recorder.BeginRun(p.Mode, p.Start, p.End)
	if err != nil {
		log.WithError(err).Warn("begin run record")
	}

	var sum model.Summary
	for _, inst := range insts {
		if ctx.Err() != nil {
			log.WithField("summary", sum.String()).Warn("run cancelled, already-saved series remain valid")
			return sum, ctx.Err()
		}

		outcome := r.Reconciler.Sync(ctx, inst, p.Start, p.End)
		sum.Add(outcome)

		evt := &recorder.InstrumentEvent{Code: inst.Code, Outcome: outcome.Kind, NewRows: outcome.NewRows}
		if outcome.Err != nil {
			evt.Reason = outcome.Err.Error()
		}
		if err := r.Recorder.RecordEvent(runID, evt); err != nil {
			log.WithError(err).Warn("record instrument event")
		}

		switch outcome.Kind {
		case model.OutcomeUpdated:
			log.WithFields(logrus.Fields{"code": inst.Code, "new_rows": outcome.NewRows}).Info("updated")
		case model.OutcomeFailed:
			log.WithFields(logrus.Fields{"code": inst.Code}).WithError(outcome.Err).Warn("failed, will retry next run")
		}
	}

	if err := r.Recorder.FinishRun(runID, sum); err != nil {
		log.WithError(err).Warn("finish run record")
	}
	log.WithFields(logrus.Fields{
		"summary": sum.String(), "elapsed": time.Since(started).Round(time.Second).String(),
	}).Info("run complete")
	return sum, nil
}
