package fetcher

import (
	"context"

	"KabuArchive/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Bars outside the requested window are filtered out, like a real provider.
type MockFetcher struct {
	Bars  map[string][]model.Bar // by code
	Errs  map[string]error       // by code, returned instead of bars
	Calls []string               // codes fetched, in order
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, code string, from, to model.Day) ([]model.Bar, error) {
	m.Calls = append(m.Calls, code)
	if err, ok := m.Errs[code]; ok {
		return nil, err
	}
	var out []model.Bar
	for _, b := range m.Bars[code] {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
