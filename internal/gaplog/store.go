// Package gaplog persists unsupported claims and catalog suggestions
// between runs. The log is where coverage work starts: frequent gaps
// point at the datasets and formulas worth adding next.
package gaplog

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hradek/fiskal/internal/model"
)

// Store is the SQLite-backed gap log. All methods are safe for
// concurrent use; rows are append-only and arrival order is the
// insertion rowid.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// RunInfo summarizes one recorded analysis run.
type RunInfo struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Gaps      int       `json:"gaps"`
}

// Open creates or opens the gap log at path. ":memory:" keeps the log
// ephemeral; file-backed logs run in WAL mode.
func Open(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open gap log: %w", err)
	}

	if path == ":memory:" {
		// Shared-cache in-memory databases need a single connection,
		// otherwise each new conn sees an empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping gap log: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS unsupported_claims (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		claim_id TEXT NOT NULL,
		claim_text TEXT NOT NULL,
		reason TEXT NOT NULL,
		detail TEXT,
		logged_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_gaps_run ON unsupported_claims(run_id);

	CREATE TABLE IF NOT EXISTS suggestions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		keywords TEXT NOT NULL,
		claim_text TEXT,
		action TEXT NOT NULL,
		logged_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_suggestions_run ON suggestions(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// BeginRun registers a run. Re-registering the same id is a no-op.
func (s *Store) BeginRun(runID string, startedAt time.Time) error {
	if runID == "" {
		return fmt.Errorf("empty run id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO runs (run_id, started_at) VALUES (?, ?)`,
		runID, startedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// Append records one unsupported claim under the run. A zero LoggedAt
// is stamped with the current time.
func (s *Store) Append(runID string, gap model.UnsupportedClaim) error {
	loggedAt := gap.LoggedAt
	if loggedAt.IsZero() {
		loggedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO unsupported_claims (run_id, claim_id, claim_text, reason, detail, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, gap.ClaimID, gap.Text, string(gap.Reason), gap.Detail, loggedAt,
	)
	if err != nil {
		return fmt.Errorf("append gap: %w", err)
	}
	return nil
}

// Suggest records a catalog-coverage suggestion under the run.
func (s *Store) Suggest(runID string, sug model.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO suggestions (run_id, keywords, claim_text, action, logged_at)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, strings.Join(sug.Keywords, " "), sug.ClaimText, sug.Action, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record suggestion: %w", err)
	}
	return nil
}

// Gaps returns the run's unsupported claims in arrival order.
func (s *Store) Gaps(runID string) ([]model.UnsupportedClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT claim_id, claim_text, reason, detail, logged_at
		 FROM unsupported_claims WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query gaps: %w", err)
	}
	defer rows.Close()

	var gaps []model.UnsupportedClaim
	for rows.Next() {
		var gap model.UnsupportedClaim
		var reason string
		var detail sql.NullString
		if err := rows.Scan(&gap.ClaimID, &gap.Text, &reason, &detail, &gap.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan gap: %w", err)
		}
		gap.Reason = model.GapReason(reason)
		gap.Detail = detail.String
		gaps = append(gaps, gap)
	}
	return gaps, rows.Err()
}

// Suggestions returns the run's suggestions in arrival order.
func (s *Store) Suggestions(runID string) ([]model.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT keywords, claim_text, action
		 FROM suggestions WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	var sugs []model.Suggestion
	for rows.Next() {
		var keywords string
		var claimText sql.NullString
		var sug model.Suggestion
		if err := rows.Scan(&keywords, &claimText, &sug.Action); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		sug.Keywords = strings.Fields(keywords)
		sug.ClaimText = claimText.String
		sugs = append(sugs, sug)
	}
	return sugs, rows.Err()
}

// Runs lists recorded runs with their gap counts, newest first.
func (s *Store) Runs() ([]RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT r.run_id, r.started_at, COUNT(u.id)
		 FROM runs r
		 LEFT JOIN unsupported_claims u ON u.run_id = r.run_id
		 GROUP BY r.run_id, r.started_at
		 ORDER BY r.started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.RunID, &info.StartedAt, &info.Gaps); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}
