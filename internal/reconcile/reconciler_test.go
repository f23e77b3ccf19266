package reconcile

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"KabuArchive/internal/fetcher"
	"KabuArchive/internal/model"
	"KabuArchive/internal/store"
)

func bar(date string, c float64) model.Bar {
	return model.Bar{Date: model.MustParseDay(date), Open: c, High: c, Low: c, Close: c, Volume: 1000}
}

func newTestReconciler(t *testing.T, mock *fetcher.MockFetcher) (*Reconciler, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	return New(mock, st), st
}

func TestMergePrefersFetchedOnOverlap(t *testing.T) {
	stored := model.Series{bar("2024-01-04", 100), bar("2024-01-05", 101)}
	fetched := []model.Bar{bar("2024-01-05", 999), bar("2024-01-09", 102)}

	merged := Merge(stored, fetched)
	require.NoError(t, merged.Validate())
	require.Len(t, merged, 3)
	require.Equal(t, 999.0, merged[1].Close) // provider-side correction wins
	require.Equal(t, "2024-01-09", merged[2].Date.String())
}

func TestMergeIsIdempotent(t *testing.T) {
	stored := model.Series{bar("2024-01-04", 100)}
	fetched := []model.Bar{bar("2024-01-05", 101), bar("2024-01-09", 102)}

	once := Merge(stored, fetched)
	twice := Merge(once, fetched)
	require.Equal(t, once, twice)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	stored := model.Series{bar("2024-01-04", 100), bar("2024-01-05", 101)}
	fetched := []model.Bar{bar("2024-01-05", 999)}

	_ = Merge(stored, fetched)
	require.Equal(t, 101.0, stored[1].Close)
}

func TestSyncUpdatedEndToEnd(t *testing.T) {
	// Series stored through 2024-03-29; run requests G_end 2024-04-02.
	// The provider has no row for the weekend and two trading days after.
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.Bar{
			"7203": {bar("2024-03-29", 3450), bar("2024-04-01", 3470), bar("2024-04-02", 3465)},
		},
	}
	r, st := newTestReconciler(t, mock)
	require.NoError(t, st.Save("7203", model.Series{bar("2024-03-28", 3440), bar("2024-03-29", 3450)}))

	out := r.Sync(context.Background(), model.Instrument{Code: "7203"},
		model.MustParseDay("2016-01-01"), model.MustParseDay("2024-04-02"))

	require.Equal(t, model.OutcomeUpdated, out.Kind)
	require.Equal(t, 2, out.NewRows)

	series, _, err := st.Load("7203")
	require.NoError(t, err)
	require.Len(t, series, 4)
	require.Equal(t, "2024-04-01", series[2].Date.String())
	require.Equal(t, "2024-04-02", series[3].Date.String())

	// the mock only saw the planned window [2024-03-30, 2024-04-02], so the
	// stored 03-29 row was not re-fetched
	require.Equal(t, []string{"7203"}, mock.Calls)
}

func TestSyncFirstFetchUsesGlobalStart(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.Bar{"9984": {bar("2016-01-04", 500), bar("2016-01-05", 505)}},
	}
	r, st := newTestReconciler(t, mock)

	out := r.Sync(context.Background(), model.Instrument{Code: "9984"},
		model.MustParseDay("2016-01-01"), model.MustParseDay("2016-01-05"))

	require.Equal(t, model.OutcomeUpdated, out.Kind)
	require.Equal(t, 2, out.NewRows)
	series, _, err := st.Load("9984")
	require.NoError(t, err)
	require.Len(t, series, 2)
}

func TestSyncUnchangedWhenAlreadyCurrent(t *testing.T) {
	mock := &fetcher.MockFetcher{}
	r, st := newTestReconciler(t, mock)
	require.NoError(t, st.Save("7203", model.Series{bar("2024-04-02", 3465)}))

	out := r.Sync(context.Background(), model.Instrument{Code: "7203"},
		model.MustParseDay("2016-01-01"), model.MustParseDay("2024-04-02"))

	require.Equal(t, model.OutcomeUnchanged, out.Kind)
	require.Empty(t, mock.Calls) // the provider must not be invoked at all
}

func TestSyncUnchangedOnZeroRows(t *testing.T) {
	mock := &fetcher.MockFetcher{} // knows no bars, returns empty
	r, st := newTestReconciler(t, mock)
	require.NoError(t, st.Save("7203", model.Series{bar("2024-03-29", 3450)}))

	out := r.Sync(context.Background(), model.Instrument{Code: "7203"},
		model.MustParseDay("2016-01-01"), model.MustParseDay("2024-04-02"))

	require.Equal(t, model.OutcomeUnchanged, out.Kind)
	require.Equal(t, []string{"7203"}, mock.Calls)
}

func TestSyncSkippedOnNotFound(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Errs: map[string]error{"1001": fmt.Errorf("%w: no symbol 1001.T", fetcher.ErrNotFound)},
	}
	r, st := newTestReconciler(t, mock)

	out := r.Sync(context.Background(), model.Instrument{Code: "1001"},
		model.MustParseDay("2016-01-01"), model.MustParseDay("2024-04-02"))

	require.Equal(t, model.OutcomeSkipped, out.Kind)
	_, ok, err := st.Load("1001")
	require.NoError(t, err)
	require.False(t, ok) // nothing written
}

func TestSyncTransientLeavesDiskUntouched(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Errs: map[string]error{"7203": fmt.Errorf("%w: status 429", fetcher.ErrTransient)},
	}
	r, st := newTestReconciler(t, mock)
	require.NoError(t, st.Save("7203", model.Series{bar("2024-03-29", 3450)}))
	before, err := os.ReadFile(st.Path("7203"))
	require.NoError(t, err)

	out := r.Sync(context.Background(), model.Instrument{Code: "7203"},
		model.MustParseDay("2016-01-01"), model.MustParseDay("2024-04-02"))

	require.Equal(t, model.OutcomeFailed, out.Kind)
	after, err := os.ReadFile(st.Path("7203"))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestSyncFailedOnInvalidGlobalWindow(t *testing.T) {
	mock := &fetcher.MockFetcher{}
	r, _ := newTestReconciler(t, mock)

	out := r.Sync(context.Background(), model.Instrument{Code: "7203"},
		model.MustParseDay("2024-04-02"), model.MustParseDay("2024-04-01"))

	require.Equal(t, model.OutcomeFailed, out.Kind)
	require.Empty(t, mock.Calls)
}

func TestSyncTwiceYieldsSameSeries(t *testing.T) {
	mock := &fetcher.MockFetcher{
		Bars: map[string][]model.Bar{"7203": {bar("2024-04-01", 3470), bar("2024-04-02", 3465)}},
	}
	r, st := newTestReconciler(t, mock)

	start, end := model.MustParseDay("2024-04-01"), model.MustParseDay("2024-04-02")
	first := r.Sync(context.Background(), model.Instrument{Code: "7203"}, start, end)
	require.Equal(t, model.OutcomeUpdated, first.Kind)
	afterFirst, _, err := st.Load("7203")
	require.NoError(t, err)

	second := r.Sync(context.Background(), model.Instrument{Code: "7203"}, start, end)
	require.Equal(t, model.OutcomeUnchanged, second.Kind)
	afterSecond, _, err := st.Load("7203")
	require.NoError(t, err)
	require.Equal(t, afterFirst, afterSecond)
}
