// Package audit implements an append-only log of rule matches found during
// an `astgrep scan` run, backed by raw database/sql over mattn/go-sqlite3 —
// the same driver and direct-SQL-with-retry style the teacher uses for its
// own run-history database (internal/db/db.go's execWithRetry), here
// dedicated to a write-heavy append log rather than run/operation tracking.
// internal/rulecache sits on the same driver through GORM's
// gorm.io/driver/sqlite dialector instead, matching how the teacher itself
// opens its GORM connection (db/sqlite.go's Connect).
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Log is an append-only audit log of findings, one row per (run, rule,
// match).
type Log struct {
	db *sql.DB
}

// execWithRetry wraps Exec with retry logic for "database is locked"
// errors, grounded on internal/db/db.go's execWithRetry.
func execWithRetry(db *sql.DB, query string, args ...any) (sql.Result, error) {
	const maxRetries = 5
	var res sql.Result
	var err error
	for range maxRetries {
		res, err = db.Exec(query, args...)
		if err == nil {
			return res, nil
		}
		if strings.Contains(err.Error(), "database is locked") {
			time.Sleep(200 * time.Millisecond)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("audit: database is locked after %d retries: %w", maxRetries, err)
}

// execWithRetryTx is execWithRetry's transaction-scoped counterpart.
func execWithRetryTx(tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	const maxRetries = 5
	var res sql.Result
	var err error
	for range maxRetries {
		res, err = tx.Exec(query, args...)
		if err == nil {
			return res, nil
		}
		if strings.Contains(err.Error(), "database is locked") {
			time.Sleep(200 * time.Millisecond)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("audit: database is locked after %d retries: %w", maxRetries, err)
}

// Open opens (creating if necessary) the audit database at path and applies
// its schema.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: creating directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("audit: opening database: %w", err)
	}
	if _, err := execWithRetry(db, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: applying schema: %w", err)
	}
	return &Log{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS scan_runs (
	id         TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	ruleset    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS findings (
	run_id     TEXT NOT NULL,
	rule_id    TEXT NOT NULL,
	severity   TEXT NOT NULL,
	source     TEXT NOT NULL,
	start_byte INTEGER NOT NULL,
	end_byte   INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES scan_runs(id)
);
`

// Close closes the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }

// RecordRun inserts the scan_runs row for one `astgrep scan` invocation,
// keyed by a caller-supplied correlation id (cmd/astgrep's scan command
// uses google/uuid for this).
func (l *Log) RecordRun(runID, ruleset string) error {
	_, err := execWithRetry(l.db,
		`INSERT INTO scan_runs (id, started_at, ruleset) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), ruleset)
	return err
}

// Finding is one audited match.
type Finding struct {
	RuleID    string
	Severity  string
	Source    string
	StartByte int
	EndByte   int
}

// RecordFindings appends every finding for runID inside one transaction.
func (l *Log) RecordFindings(runID string, findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("audit: beginning transaction: %w", err)
	}
	for _, f := range findings {
		if _, err := execWithRetryTx(tx,
			`INSERT INTO findings (run_id, rule_id, severity, source, start_byte, end_byte)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, f.RuleID, f.Severity, f.Source, f.StartByte, f.EndByte,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("audit: recording finding: %w", err)
		}
	}
	return tx.Commit()
}

// CountByRule returns how many findings a rule has accumulated across every
// recorded run, for `astgrep cache stats`-style introspection.
func (l *Log) CountByRule(ruleID string) (int, error) {
	row := l.db.QueryRow(`SELECT COUNT(*) FROM findings WHERE rule_id = ?`, ruleID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("audit: counting findings: %w", err)
	}
	return n, nil
}
