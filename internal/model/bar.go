package model

import "fmt"

// Bar is one day's adjusted OHLCV record for one instrument.
type Bar struct {
	Date   Day
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is the ordered sequence of bars stored for one instrument.
// A valid series has strictly increasing dates and non-negative fields.
type Series []Bar

// LastDate returns the date of the last bar, and false for an empty series.
func (s Series) LastDate() (Day, bool) {
	if len(s) == 0 {
		return Day{}, false
	}
	return s[len(s)-1].Date, true
}

// Validate checks the series invariants: dates strictly increasing with no
// duplicates, prices and volume non-negative.
func (s Series) Validate() error {
	for i, b := range s {
		if b.Date.IsZero() {
			return fmt.Errorf("bar %d: missing date", i)
		}
		if i > 0 && !s[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bar %d (%s): dates not strictly increasing after %s", i, b.Date, s[i-1].Date)
		}
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
			return fmt.Errorf("bar %d (%s): negative price", i, b.Date)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume", i, b.Date)
		}
	}
	return nil
}

// Instrument is one entry of the ticker universe. Code is the unique key
// (a 4-digit TSE code); Name is informational and may be empty.
type Instrument struct {
	Code string
	Name string
}
