// Package universe resolves the set of instrument codes a run processes.
package universe

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"KabuArchive/internal/model"
)

// ErrUnavailable means no tier produced a usable universe. Fatal to the run.
var ErrUnavailable = errors.New("ticker universe unavailable")

// Resolver produces the ordered universe through tiered fallback:
// cached roster, then the remote listing service, then an exhaustive probe
// of every code in [ProbeFrom, ProbeTo]. The first tier to succeed wins.
type Resolver struct {
	Cache     *RosterCache
	Listing   *ListingClient
	ProbeFrom int
	ProbeTo   int
}

// Resolve returns the universe in ascending code order. forceRefresh skips
// the cache tier so a fresh listing is fetched (and re-cached) even when a
// cached roster exists.
//
// The probe tier mostly yields codes no instrument is listed under; the
// provider rejects those one by one downstream, since the resolver has no
// way to validate a code without fetching it.
func (r *Resolver) Resolve(ctx context.Context, forceRefresh bool) ([]model.Instrument, error) {
	log := logrus.WithField("component", "universe")

	if !forceRefresh {
		roster, ok, err := r.Cache.Load()
		if err != nil {
			log.WithError(err).Warn("roster cache unreadable, trying listing service")
		} else if ok && len(roster) > 0 {
			sortRoster(roster)
			log.WithField("count", len(roster)).Info("universe resolved from roster cache")
			return roster, nil
		}
	}

	roster, err := r.Listing.Fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("listing service unavailable, falling back to exhaustive probe")
	} else {
		sortRoster(roster)
		if err := r.Cache.Save(roster); err != nil {
			log.WithError(err).Warn("persist roster cache")
		}
		log.WithField("count", len(roster)).Info("universe resolved from listing service")
		return roster, nil
	}

	if r.ProbeFrom <= 0 || r.ProbeTo < r.ProbeFrom {
		return nil, fmt.Errorf("%w: probe range [%d, %d] is empty", ErrUnavailable, r.ProbeFrom, r.ProbeTo)
	}
	roster = make([]model.Instrument, 0, r.ProbeTo-r.ProbeFrom+1)
	for code := r.ProbeFrom; code <= r.ProbeTo; code++ {
		roster = append(roster, model.Instrument{Code: fmt.Sprintf("%04d", code)})
	}
	log.WithField("count", len(roster)).Warn("universe synthesized from probe range, most codes will be skipped")
	return roster, nil
}

// sortRoster orders instruments ascending by code so repeated runs process
// the universe in the same order.
func sortRoster(roster []model.Instrument) {
	sort.Slice(roster, func(i, j int) bool { return roster[i].Code < roster[j].Code })
}
