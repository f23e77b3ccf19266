package universe

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"KabuArchive/internal/model"
)

// RosterCache is the on-disk roster of (code, name) pairs, a CSV file with a
// "code,name" header. It is read as the first resolution tier and rewritten
// after every successful remote listing fetch.
type RosterCache struct {
	Path string
}

// Load reads the cached roster. ok=false with a nil error means no cache
// file exists yet.
func (c *RosterCache) Load() (roster []model.Instrument, ok bool, err error) {
	f, err := os.Open(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open roster cache: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read roster cache: %w", err)
	}
	roster = parseRoster(records)
	return roster, true, nil
}

// Save atomically replaces the roster cache with the given pairs.
func (c *RosterCache) Save(roster []model.Instrument) error {
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create roster cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(c.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create roster temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"code", "name"}); err != nil {
		tmp.Close()
		return fmt.Errorf("write roster cache: %w", err)
	}
	for _, inst := range roster {
		if err := w.Write([]string{inst.Code, inst.Name}); err != nil {
			tmp.Close()
			return fmt.Errorf("write roster cache: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush roster cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close roster temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		return fmt.Errorf("replace roster cache: %w", err)
	}
	return nil
}

// parseRoster extracts (code, name) pairs from CSV records. A leading
// "code" or "ticker" header row is skipped; codes are zero-padded to four
// digits; blank rows are dropped.
func parseRoster(records [][]string) []model.Instrument {
	var roster []model.Instrument
	for i, rec := range records {
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		if i == 0 && (strings.EqualFold(rec[0], "code") || strings.EqualFold(rec[0], "ticker")) {
			continue
		}
		inst := model.Instrument{Code: padCode(rec[0])}
		if len(rec) > 1 {
			inst.Name = rec[1]
		}
		roster = append(roster, inst)
	}
	return roster
}

func padCode(code string) string {
	for len(code) < 4 {
		code = "0" + code
	}
	return code
}
