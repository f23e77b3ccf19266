package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"KabuArchive/internal/scheduler"
)

type serveCmd struct {
	cronSpec string
	runNow   bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run incremental updates on a cron schedule" }
func (*serveCmd) Usage() string {
	return "kabarchive serve [-cron '0 0 19 * * 1-5'] [-run-now]\n"
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cronSpec, "cron", "", "cron expression with seconds field (default from config)")
	f.BoolVar(&c.runNow, "run-now", false, "run one update immediately on start")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	spec := cfg.Schedule.UpdateCron
	if c.cronSpec != "" {
		spec = c.cronSpec
	}

	r, cleanup, err := buildRunner(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	sched := scheduler.New(ctx, r, cfg.StartDay())
	if err := sched.Register(spec); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.runNow {
		logrus.Info("running initial update before entering schedule")
		sched.RunUpdateNow()
	}

	sched.Run() // blocks until SIGINT/SIGTERM cancels ctx
	return subcommands.ExitSuccess
}
