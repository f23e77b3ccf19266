// Package scheduler runs incremental updates on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"KabuArchive/internal/model"
	"KabuArchive/internal/runner"
)

// Scheduler keeps the process alive and triggers an incremental update per
// the configured cron expression. Each trigger is a fresh run ending today.
// Cron fires every job in its own goroutine, so a run that outlasts the
// schedule interval would overlap the next firing; the SkipIfStillRunning
// chain drops those firings to keep a single sequential writer on the store.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *runner.Runner
	Start  model.Day
	Ctx    context.Context
}

// New creates a Scheduler around an existing runner.
func New(ctx context.Context, r *runner.Runner, start model.Day) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logrus.StandardLogger()))),
		),
		Runner: r,
		Start:  start,
		Ctx:    ctx,
	}
}

// Register adds the update job for the given cron expression.
func (s *Scheduler) Register(updateCron string) error {
	if _, err := s.Cron.AddFunc(updateCron, s.runUpdate); err != nil {
		return fmt.Errorf("register update task: %w", err)
	}
	return nil
}

func (s *Scheduler) runUpdate() {
	log := logrus.WithField("component", "scheduler")
	params := runner.Params{
		Mode:  "update",
		Start: s.Start,
		End:   model.Today(),
	}
	if _, err := s.Runner.Run(s.Ctx, params); err != nil {
		log.WithError(err).Error("scheduled update failed")
	}
}

// RunUpdateNow executes one update immediately (for manual trigger / -run-now).
func (s *Scheduler) RunUpdateNow() {
	s.runUpdate()
}

// Run starts the scheduler and blocks until the context is cancelled.
func (s *Scheduler) Run() {
	s.Cron.Start()
	logrus.WithField("component", "scheduler").Info("scheduler started")
	<-s.Ctx.Done()
	<-s.Cron.Stop().Done()
	logrus.WithField("component", "scheduler").Info("scheduler stopped")
}
