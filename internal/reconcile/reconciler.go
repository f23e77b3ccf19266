// Package reconcile extends one instrument's stored series with freshly
// fetched rows.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"KabuArchive/internal/fetcher"
	"KabuArchive/internal/model"
	"KabuArchive/internal/planner"
	"KabuArchive/internal/store"
)

// Reconciler runs the per-instrument plan → fetch → merge → save cycle.
type Reconciler struct {
	Fetcher fetcher.Fetcher
	Store   *store.Store
}

// New creates a Reconciler.
func New(f fetcher.Fetcher, s *store.Store) *Reconciler {
	return &Reconciler{Fetcher: f, Store: s}
}

// Sync reconciles one instrument against the global window [gStart, gEnd].
// Every error is converted into an outcome tag; nothing here aborts a run.
// On any failure path the stored series file is left exactly as it was.
func (r *Reconciler) Sync(ctx context.Context, inst model.Instrument, gStart, gEnd model.Day) model.Outcome {
	log := logrus.WithFields(logrus.Fields{"component": "reconcile", "code": inst.Code})

	stored, _, err := r.Store.Load(inst.Code)
	if err != nil {
		log.WithError(err).Warn("load stored series")
		return model.Failed(err)
	}

	window, err := planner.Plan(stored, gStart, gEnd)
	if err != nil {
		log.WithError(err).Error("plan fetch window")
		return model.Failed(err)
	}
	if window.None() {
		return model.Unchanged()
	}

	fetched, err := r.Fetcher.FetchDailyBars(ctx, inst.Code, window.From, window.To)
	switch {
	case fetcher.IsNotFound(err):
		return model.Skipped(err)
	case err != nil:
		log.WithError(err).Warn("fetch daily bars")
		return model.Failed(err)
	case len(fetched) == 0:
		return model.Unchanged()
	}

	merged := Merge(stored, fetched)
	if err := r.Store.Save(inst.Code, merged); err != nil {
		log.WithError(err).Error("save merged series")
		return model.Failed(fmt.Errorf("save %s: %w", inst.Code, err))
	}
	newRows := len(merged) - len(stored)
	log.WithFields(logrus.Fields{"window": window.String(), "new_rows": newRows}).Debug("series updated")
	return model.Updated(newRows)
}

// Merge combines a stored series with fetched rows: one row per date, the
// fetched row winning on overlap (provider-side corrections), sorted
// ascending. Inputs are not mutated.
func Merge(stored model.Series, fetched []model.Bar) model.Series {
	byDate := make(map[model.Day]model.Bar, len(stored)+len(fetched))
	for _, b := range stored {
		byDate[b.Date] = b
	}
	for _, b := range fetched {
		byDate[b.Date] = b
	}
	merged := make(model.Series, 0, len(byDate))
	for _, b := range byDate {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}
