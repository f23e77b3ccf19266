package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type updateCmd struct {
	end     string
	refresh bool
}

func (*updateCmd) Name() string { return "update" }
func (*updateCmd) Synopsis() string {
	return "extend each stored series to the present, fetching only missing dates"
}
func (*updateCmd) Usage() string {
	return "kabarchive update [-end 2024-12-31] [-refresh-universe]\n"
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.end, "end", "", "end date (YYYY-MM-DD, default today)")
	f.BoolVar(&c.refresh, "refresh-universe", false, "skip the roster cache and re-fetch the listing")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Same reconcile path as backfill: instruments with no stored series get
	// their full history, the rest resume after their last stored date.
	return runArchive(ctx, "update", "", c.end, c.refresh)
}
