package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"KabuArchive/internal/config"
	"KabuArchive/internal/fetcher"
	"KabuArchive/internal/logging"
	"KabuArchive/internal/reconcile"
	"KabuArchive/internal/recorder"
	"KabuArchive/internal/runner"
	"KabuArchive/internal/store"
	"KabuArchive/internal/universe"
)

// loadConfig loads and validates the config, and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	return cfg, nil
}

// buildRunner wires the store, fetcher, resolver and run log together.
// The returned cleanup closes the run log database.
func buildRunner(cfg *config.Config) (*runner.Runner, func(), error) {
	st, err := store.New(cfg.Store.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("store directory inaccessible: %w", err)
	}

	paced := fetcher.NewPaced(fetcher.NewYahooFetcher(cfg.Proxy), cfg.Delay())

	resolver := &universe.Resolver{
		Cache:     &universe.RosterCache{Path: cfg.Universe.RosterFile},
		Listing:   universe.NewListingClient(cfg.Universe.ListingURL, cfg.Proxy),
		ProbeFrom: cfg.Universe.ProbeFrom,
		ProbeTo:   cfg.Universe.ProbeTo,
	}

	var runLog recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logrus.WithError(err).Warn("init sqlite run log failed, continuing without it")
		} else {
			runLog = sr
		}
	}

	r := runner.New(resolver, reconcile.New(paced, st), runLog)
	cleanup := func() { runLog.Close() }
	return r, cleanup, nil
}
