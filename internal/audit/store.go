// Package audit records batch runs and per-parcel match decisions in an
// embedded SQLite database so resolution quality can be reviewed after
// the fact.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS batch_run (
	run_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	label        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME,
	processed    INTEGER NOT NULL DEFAULT 0,
	resolved     INTEGER NOT NULL DEFAULT 0,
	unresolved   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS match_decision (
	decision_id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      INTEGER NOT NULL REFERENCES batch_run(run_id),
	parcel_id   TEXT NOT NULL,
	method      TEXT NOT NULL,
	score       REAL NOT NULL DEFAULT 0,
	note        TEXT NOT NULL DEFAULT '',
	decided_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_decision_run ON match_decision(run_id);
CREATE INDEX IF NOT EXISTS idx_decision_parcel ON match_decision(parcel_id);
`

// Store wraps the SQLite connection with audit-specific operations.
type Store struct {
	conn *sql.DB
}

// Run is one batch run's summary row.
type Run struct {
	ID          int64      `json:"run_id"`
	Label       string     `json:"label"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Processed   int        `json:"processed"`
	Resolved    int        `json:"resolved"`
	Unresolved  int        `json:"unresolved"`
}

// Decision is one parcel's recorded match outcome.
type Decision struct {
	RunID     int64     `json:"run_id"`
	ParcelID  string    `json:"parcel_id"`
	Method    string    `json:"method"`
	Score     float64   `json:"score"`
	Note      string    `json:"note"`
	DecidedAt time.Time `json:"decided_at"`
}

// MethodStat aggregates decision counts per match method.
type MethodStat struct {
	Method   string  `json:"method"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// Open opens (or creates) the audit database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("audit: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("audit: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// CreateRun opens a new batch run and returns its id.
func (s *Store) CreateRun(label string) (int64, error) {
	res, err := s.conn.Exec(`INSERT INTO batch_run (label) VALUES (?)`, label)
	if err != nil {
		return 0, fmt.Errorf("audit: create run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("audit: run id: %w", err)
	}
	return id, nil
}

// RecordDecision stores one parcel's match outcome for a run.
func (s *Store) RecordDecision(runID int64, parcelID, method string, score float64, note string) error {
	_, err := s.conn.Exec(`
		INSERT INTO match_decision (run_id, parcel_id, method, score, note)
		VALUES (?, ?, ?, ?, ?)
	`, runID, parcelID, method, score, note)
	if err != nil {
		return fmt.Errorf("audit: record decision for %s: %w", parcelID, err)
	}
	return nil
}

// CompleteRun stamps a run's completion time and counters.
func (s *Store) CompleteRun(runID int64, processed, resolved, unresolved int) error {
	_, err := s.conn.Exec(`
		UPDATE batch_run
		SET completed_at = CURRENT_TIMESTAMP, processed = ?, resolved = ?, unresolved = ?
		WHERE run_id = ?
	`, processed, resolved, unresolved, runID)
	if err != nil {
		return fmt.Errorf("audit: complete run %d: %w", runID, err)
	}
	return nil
}

// ListRuns returns every batch run, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.conn.Query(`
		SELECT run_id, label, started_at, completed_at, processed, resolved, unresolved
		FROM batch_run ORDER BY run_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("audit: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Label, &r.StartedAt, &completed, &r.Processed, &r.Resolved, &r.Unresolved); err != nil {
			return nil, fmt.Errorf("audit: scan run: %w", err)
		}
		if completed.Valid {
			r.CompletedAt = &completed.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListDecisions returns a run's decisions in parcel order of recording.
func (s *Store) ListDecisions(runID int64) ([]Decision, error) {
	rows, err := s.conn.Query(`
		SELECT run_id, parcel_id, method, score, note, decided_at
		FROM match_decision WHERE run_id = ? ORDER BY decision_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("audit: list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.RunID, &d.ParcelID, &d.Method, &d.Score, &d.Note, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("audit: scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// Stats aggregates decision counts and mean score per match method.
func (s *Store) Stats() ([]MethodStat, error) {
	rows, err := s.conn.Query(`
		SELECT method, COUNT(*), AVG(score)
		FROM match_decision GROUP BY method ORDER BY COUNT(*) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("audit: stats: %w", err)
	}
	defer rows.Close()

	var stats []MethodStat
	for rows.Next() {
		var st MethodStat
		if err := rows.Scan(&st.Method, &st.Count, &st.AvgScore); err != nil {
			return nil, fmt.Errorf("audit: scan stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
