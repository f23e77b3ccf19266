package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"KabuArchive/internal/fetcher"
	"KabuArchive/internal/model"
	"KabuArchive/internal/reconcile"
	"KabuArchive/internal/recorder"
	"KabuArchive/internal/runner"
	"KabuArchive/internal/store"
	"KabuArchive/internal/universe"
)

// slowFetcher stalls on every call and tracks how many calls are in flight
// at once, so tests can assert the store never has concurrent writers.
type slowFetcher struct {
	delay       time.Duration
	inFlight    int32
	maxInFlight int32
	calls       int32
}

func (f *slowFetcher) Name() string { return "slow" }

func (f *slowFetcher) FetchDailyBars(_ context.Context, code string, _, _ model.Day) ([]model.Bar, error) {
	cur := atomic.AddInt32(&f.inFlight, 1)
	for {
		max := atomic.LoadInt32(&f.maxInFlight)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxInFlight, max, cur) {
			break
		}
	}
	time.Sleep(f.delay)
	atomic.AddInt32(&f.inFlight, -1)
	atomic.AddInt32(&f.calls, 1)
	return nil, fmt.Errorf("%w: no symbol %s.T", fetcher.ErrNotFound, code)
}

func TestScheduledRunsNeverOverlap(t *testing.T) {
	if testing.Short() {
		t.Skip("multi-second cron test")
	}

	// Four instruments at 400ms per fetch make each run outlast the
	// every-second schedule, so firings queue up behind a running job.
	cache := &universe.RosterCache{Path: filepath.Join(t.TempDir(), "tickers.csv")}
	require.NoError(t, cache.Save([]model.Instrument{
		{Code: "1301"}, {Code: "1302"}, {Code: "1303"}, {Code: "1304"},
	}))
	resolver := &universe.Resolver{
		Cache:     cache,
		Listing:   &universe.ListingClient{URL: "", Client: http.DefaultClient},
		ProbeFrom: 1000,
		ProbeTo:   9999,
	}

	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	slow := &slowFetcher{delay: 400 * time.Millisecond}
	r := runner.New(resolver, reconcile.New(slow, st), recorder.NewNoopRecorder())

	ctx, cancel := context.WithTimeout(context.Background(), 3500*time.Millisecond)
	defer cancel()
	sched := New(ctx, r, model.MustParseDay("2016-01-01"))
	require.NoError(t, sched.Register("* * * * * *"))

	done := make(chan struct{})
	go func() {
		sched.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}

	require.Greater(t, atomic.LoadInt32(&slow.calls), int32(0), "schedule never fired")
	require.Equal(t, int32(1), atomic.LoadInt32(&slow.maxInFlight),
		"scheduled runs overlapped: concurrent provider calls observed")
}
