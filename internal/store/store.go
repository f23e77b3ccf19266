// Package store persists one CSV series file per instrument code.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"KabuArchive/internal/model"
)

// ErrInvariant is returned by Save when the series violates the store
// invariants (strictly increasing unique dates, non-negative fields).
// The reconciler's merge step should make this unreachable; it is the last
// line of defense against writing a corrupt file.
var ErrInvariant = errors.New("series invariant violation")

var header = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// Store reads and writes per-instrument series files under Dir.
type Store struct {
	Dir string
}

// New creates the store directory if needed and returns a Store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the series file path for a code.
func (s *Store) Path(code string) string {
	return filepath.Join(s.Dir, code+".csv")
}

// Load reads the stored series for code. It returns ok=false with a nil
// error when no series exists yet.
func (s *Store) Load(code string) (series model.Series, ok bool, err error) {
	f, err := os.Open(s.Path(code))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open series %s: %w", code, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read series %s: %w", code, err)
	}
	if len(records) == 0 {
		return nil, true, nil
	}

	series = make(model.Series, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		bar, err := parseRow(rec)
		if err != nil {
			return nil, false, fmt.Errorf("series %s row %d: %w", code, i+2, err)
		}
		series = append(series, bar)
	}
	return series, true, nil
}

// Save atomically replaces the stored series for code: the full series is
// written to a temp file in the same directory, then renamed over the old
// file, so an interrupted run never leaves a partial file behind.
func (s *Store) Save(code string, series model.Series) error {
	if err := series.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvariant, code, err)
	}

	tmp, err := os.CreateTemp(s.Dir, code+".csv.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", code, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write series %s: %w", code, err)
	}
	for _, b := range series {
		if err := w.Write(formatRow(b)); err != nil {
			tmp.Close()
			return fmt.Errorf("write series %s: %w", code, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush series %s: %w", code, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", code, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(code)); err != nil {
		return fmt.Errorf("replace series %s: %w", code, err)
	}
	return nil
}

func parseRow(rec []string) (model.Bar, error) {
	if len(rec) != len(header) {
		return model.Bar{}, fmt.Errorf("want %d columns, got %d", len(header), len(rec))
	}
	date, err := model.ParseDay(rec[0])
	if err != nil {
		return model.Bar{}, err
	}
	var prices [4]float64
	for i, field := range rec[1:5] {
		prices[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("column %s: %w", header[i+1], err)
		}
	}
	volume, err := strconv.ParseInt(rec[5], 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("column Volume: %w", err)
	}
	return model.Bar{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

func formatRow(b model.Bar) []string {
	return []string{
		b.Date.String(),
		strconv.FormatFloat(b.Open, 'f', -1, 64),
		strconv.FormatFloat(b.High, 'f', -1, 64),
		strconv.FormatFloat(b.Low, 'f', -1, 64),
		strconv.FormatFloat(b.Close, 'f', -1, 64),
		strconv.FormatInt(b.Volume, 10),
	}
}
