package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"ResourceCycle/internal/model"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// RunRow is one row of the runs table.
type RunRow struct {
	RunID            string
	Timestamp        time.Time
	Scenario         string
	Mode             model.Mode
	Seed             int64
	StopReason       model.State
	Steps            int
	InitialAvailable int64
	FinalAvailable   int64
	ConsumedTotal    int64
	ReplenishedTotal int64
	Target           int64
	TotalWithdrawn   int64
	TargetMet        bool
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets history queries read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			scenario          TEXT,
			mode              TEXT,
			seed              INTEGER,
			stop_reason       TEXT,
			steps             INTEGER,
			capacity_max      INTEGER,
			initial_available INTEGER,
			final_available   INTEGER,
			consumed_total    INTEGER,
			replenished_total INTEGER,
			target            INTEGER,
			total_withdrawn   INTEGER,
			target_met        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycle_records (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT NOT NULL REFERENCES runs(run_id),
			step_index         INTEGER NOT NULL,
			available_before   INTEGER,
			amount_replenished INTEGER,
			amount_withdrawn   INTEGER,
			available_after    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_run ON cycle_records(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run summary and all its records in one transaction.
func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	s := evt.Result.Summary
	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, timestamp, scenario, mode, seed, stop_reason, steps, capacity_max,
		 initial_available, final_available, consumed_total, replenished_total,
		 target, total_withdrawn, target_met)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, evt.StartedAt.Unix(), evt.Scenario, string(s.Mode), evt.Seed,
		string(s.StopReason), s.Steps, s.CapacityMax,
		s.InitialAvailable, s.FinalAvailable, s.ConsumedTotal, s.ReplenishedTotal,
		s.Target, s.TotalWithdrawn, s.TargetMet,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO cycle_records
		(run_id, step_index, available_before, amount_replenished, amount_withdrawn, available_after)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare cycle insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range evt.Result.Records {
		if _, err := stmt.Exec(evt.RunID, rec.Index, rec.AvailableBefore,
			rec.AmountReplenished, rec.AmountWithdrawn, rec.AvailableAfter); err != nil {
			return fmt.Errorf("insert cycle %d: %w", rec.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug("run recorded", zap.String("run_id", evt.RunID), zap.Int("records", len(evt.Result.Records)))
	return nil
}

// RecentRuns returns up to limit runs, newest first. An empty scenario matches all.
func (r *SQLiteRecorder) RecentRuns(scenario string, limit int) ([]RunRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, scenario, mode, seed, stop_reason, steps,
		initial_available, final_available, consumed_total, replenished_total,
		target, total_withdrawn, target_met
		FROM runs WHERE (? = '' OR scenario = ?)
		ORDER BY timestamp DESC, rowid DESC LIMIT ?`, scenario, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var (
			row  RunRow
			ts   int64
			mode string
			stop string
		)
		if err := rows.Scan(&row.RunID, &ts, &row.Scenario, &mode, &row.Seed, &stop, &row.Steps,
			&row.InitialAvailable, &row.FinalAvailable, &row.ConsumedTotal, &row.ReplenishedTotal,
			&row.Target, &row.TotalWithdrawn, &row.TargetMet); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		row.Timestamp = time.Unix(ts, 0)
		row.Mode = model.Mode(mode)
		row.StopReason = model.State(stop)
		out = append(out, row)
	}
	return out, rows.Err()
}

// CycleRecords loads the stored records of one run in step order.
func (r *SQLiteRecorder) CycleRecords(runID string) ([]model.CycleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT step_index, available_before, amount_replenished, amount_withdrawn, available_after
		FROM cycle_records WHERE run_id = ? ORDER BY step_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []model.CycleRecord
	for rows.Next() {
		var rec model.CycleRecord
		if err := rows.Scan(&rec.Index, &rec.AvailableBefore, &rec.AmountReplenished,
			&rec.AmountWithdrawn, &rec.AvailableAfter); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
