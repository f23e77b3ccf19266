// Command kabarchive maintains a local archive of daily OHLCV bars for
// TSE-listed equities.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "configs/config.yaml", "path to the YAML config file")

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&backfillCmd{}, "archive")
	subcommands.Register(&updateCmd{}, "archive")
	subcommands.Register(&serveCmd{}, "archive")

	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *configPath == "configs/config.yaml" {
		*configPath = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(int(subcommands.Execute(ctx)))
}
