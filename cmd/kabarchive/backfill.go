package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"KabuArchive/internal/model"
	"KabuArchive/internal/runner"
)

type backfillCmd struct {
	start   string
	end     string
	refresh bool
}

func (*backfillCmd) Name() string { return "backfill" }
func (*backfillCmd) Synopsis() string {
	return "fetch full daily history for every instrument in the universe"
}
func (*backfillCmd) Usage() string {
	return "kabarchive backfill [-start 2016-01-01] [-end 2024-12-31] [-refresh-universe]\n"
}

func (c *backfillCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "start date (YYYY-MM-DD, default from config)")
	f.StringVar(&c.end, "end", "", "end date (YYYY-MM-DD, default today)")
	f.BoolVar(&c.refresh, "refresh-universe", false, "skip the roster cache and re-fetch the listing")
}

func (c *backfillCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runArchive(ctx, "backfill", c.start, c.end, c.refresh)
}

// runArchive is the shared execution path of backfill and update. Exit
// status is zero whenever the run itself completes, regardless of
// per-instrument skips and failures.
func runArchive(ctx context.Context, mode, startFlag, endFlag string, refresh bool) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	start := cfg.StartDay()
	if startFlag != "" {
		if start, err = model.ParseDay(startFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	end := model.Today()
	if endFlag != "" {
		if end, err = model.ParseDay(endFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	r, cleanup, err := buildRunner(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	sum, err := r.Run(ctx, runner.Params{Mode: mode, Start: start, End: end, ForceRefresh: refresh})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(sum.String())
	return subcommands.ExitSuccess
}
