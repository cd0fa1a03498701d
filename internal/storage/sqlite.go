// Package storage provides SQLite-based persistence for simulated programs.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tetrlang/internal/engine"
)

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// Run is one simulated program and its summary.
type Run struct {
	ID        int64     `json:"id"`
	Program   string    `json:"program"`
	Source    string    `json:"source"` // "cli", "api" or "ssh"
	Outcome   string    `json:"outcome"`
	Reason    string    `json:"reason,omitempty"`
	States    int       `json:"states"`
	Locks     int       `json:"locks"`
	Lines     int       `json:"lines"`
	MaxCombo  int       `json:"max_combo"`
	MaxB2B    int       `json:"max_b2b"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRun builds a run record from a simulation result.
func NewRun(program, source string, res engine.Result) Run {
	return Run{
		Program:  program,
		Source:   source,
		Outcome:  res.Outcome.String(),
		Reason:   res.Reason,
		States:   len(res.States),
		Locks:    res.Summary.Locks,
		Lines:    res.Summary.Lines,
		MaxCombo: res.Summary.MaxCombo,
		MaxB2B:   res.Summary.MaxB2B,
	}
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			program TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'cli',
			outcome TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			states INTEGER NOT NULL DEFAULT 0,
			locks INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			max_combo INTEGER NOT NULL DEFAULT 0,
			max_b2b INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a run. Returns the ID of the inserted record.
func (s *Store) SaveRun(run Run) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (program, source, outcome, reason, states, locks, lines, max_combo, max_b2b)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Program, run.Source, run.Outcome, run.Reason,
		run.States, run.Locks, run.Lines, run.MaxCombo, run.MaxB2B,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, program, source, outcome, reason, states, locks, lines, max_combo, max_b2b, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var createdAt any
	err := row.Scan(
		&r.ID, &r.Program, &r.Source, &r.Outcome, &r.Reason,
		&r.States, &r.Locks, &r.Lines, &r.MaxCombo, &r.MaxB2B,
		&createdAt,
	)
	if err != nil {
		return r, err
	}
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// RecentRuns retrieves the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// RunByID retrieves a run by its ID. Returns nil if it does not exist.
func (s *Store) RunByID(id int64) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

// ClearRuns deletes the whole history.
func (s *Store) ClearRuns() error {
	if _, err := s.db.Exec("DELETE FROM runs"); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// Stats contains aggregated statistics over every run.
type Stats struct {
	Runs            int       `json:"runs"`
	Completed       int       `json:"completed"`
	GameOvers       int       `json:"game_overs"`
	OperationErrors int       `json:"operation_errors"`
	TotalLines      int64     `json:"total_lines"`
	BestCombo       int       `json:"best_combo"`
	BestB2B         int       `json:"best_b2b"`
	LastRun         time.Time `json:"last_run"`
}

// Stats retrieves aggregated statistics for the history.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	var lastRun any

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(outcome = ?), 0),
		        COALESCE(SUM(outcome = ?), 0),
		        COALESCE(SUM(outcome = ?), 0),
		        COALESCE(SUM(lines), 0),
		        COALESCE(MAX(max_combo), 0),
		        COALESCE(MAX(max_b2b), 0),
		        MAX(created_at)
		 FROM runs`,
		engine.OutcomeCompleted.String(),
		engine.OutcomeGameOver.String(),
		engine.OutcomeOperationError.String(),
	).Scan(
		&stats.Runs, &stats.Completed, &stats.GameOvers, &stats.OperationErrors,
		&stats.TotalLines, &stats.BestCombo, &stats.BestB2B, &lastRun,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastRun = parseTime(lastRun)

	return stats, nil
}
