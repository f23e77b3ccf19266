package fetcher

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"KabuArchive/internal/model"
)

// Paced wraps a Fetcher and enforces a minimum interval between provider
// calls. Only actual fetches consume the limiter; instruments that need no
// fetch pay no delay.
type Paced struct {
	F       Fetcher
	limiter *rate.Limiter
}

// NewPaced returns f gated to at most one call per interval. The first call
// proceeds immediately. A non-positive interval disables pacing.
func NewPaced(f Fetcher, interval time.Duration) *Paced {
	lim := rate.NewLimiter(rate.Inf, 1)
	if interval > 0 {
		lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Paced{F: f, limiter: lim}
}

func (p *Paced) Name() string { return p.F.Name() }

func (p *Paced) FetchDailyBars(ctx context.Context, code string, from, to model.Day) ([]model.Bar, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.F.FetchDailyBars(ctx, code, from, to)
}
