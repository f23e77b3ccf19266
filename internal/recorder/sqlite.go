package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"KabuArchive/internal/model"
)

// SQLiteRecorder persists the run log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so inspection tools can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logrus.WithField("component", "recorder").Infof("sqlite run log opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			mode        TEXT NOT NULL,
			start_date  TEXT NOT NULL,
			end_date    TEXT NOT NULL,
			updated     INTEGER,
			unchanged   INTEGER,
			skipped     INTEGER,
			failed      INTEGER,
			new_rows    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS instrument_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			code      TEXT NOT NULL,
			outcome   TEXT NOT NULL,
			new_rows  INTEGER,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run ON instrument_events(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_code ON instrument_events(code)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) BeginRun(mode string, start, end model.Day) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`INSERT INTO runs (started_at, mode, start_date, end_date)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), mode, start.String(), end.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRecorder) RecordEvent(runID int64, evt *InstrumentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO instrument_events
		(run_id, timestamp, code, outcome, new_rows, reason)
		VALUES (?,?,?,?,?,?)`,
		runID, time.Now().Unix(), evt.Code, string(evt.Outcome), evt.NewRows, evt.Reason,
	)
	return err
}

func (r *SQLiteRecorder) FinishRun(runID int64, sum model.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`UPDATE runs SET finished_at=?, updated=?, unchanged=?, skipped=?, failed=?, new_rows=?
		WHERE id=?`,
		time.Now().Unix(), sum.Updated, sum.Unchanged, sum.Skipped, sum.Failed, sum.NewRows, runID,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
