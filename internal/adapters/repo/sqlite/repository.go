// Package sqlite persists cycle history in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

const (
	historyPathKey    = "history.path"
	historyRetainKey  = "history.retain"
	historyDataDir    = "fb"
	historyFileName   = "history.db"
	defaultRetainSize = 1000
	dsnPragmas        = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
)

type Repository struct {
	db     *sql.DB
	path   string
	retain int
}

var _ ports.HistoryRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	defaultPath, err := defaultHistoryPath()
	if err != nil {
		return nil, err
	}
	cfg.SetDefault(historyPathKey, defaultPath)
	cfg.SetDefault(historyRetainKey, defaultRetainSize)

	path := cfg.GetString(historyPathKey)
	if path == "" {
		return nil, errors.New("history path is empty")
	}

	return Open(path, cfg.GetInt(historyRetainKey))
}

// Open opens or creates the database at path and runs migrations.
func Open(path string, retain int) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	r := &Repository{db: db, path: path, retain: retain}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return r, nil
}

func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS cycles (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		cognitive_load REAL NOT NULL,
		focus_intensity_sum REAL NOT NULL,
		active_count INTEGER NOT NULL,
		allocation_efficiency REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cycles_timestamp ON cycles(timestamp);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *Repository) Append(ctx context.Context, entries []domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cycles (id, timestamp, cognitive_load, focus_intensity_sum, active_count, allocation_efficiency)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.ExecContext(ctx,
			entry.CycleID,
			entry.Timestamp.UTC().Format(time.RFC3339Nano),
			entry.CognitiveLoad,
			entry.FocusIntensitySum,
			entry.ActiveCount,
			entry.AllocationEfficiency,
		); err != nil {
			return fmt.Errorf("insert cycle %s: %w", entry.CycleID, err)
		}
	}

	if r.retain > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM cycles WHERE seq NOT IN (
				SELECT seq FROM cycles ORDER BY seq DESC LIMIT ?
			)`, r.retain); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}

	return nil
}

// List returns the most recent limit entries, oldest first. A non-positive
// limit returns everything.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, cognitive_load, focus_intensity_sum, active_count, allocation_efficiency
		FROM (SELECT * FROM cycles ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			entry     domain.HistoryEntry
			timestamp string
		)
		if err := rows.Scan(
			&entry.CycleID,
			&timestamp,
			&entry.CognitiveLoad,
			&entry.FocusIntensitySum,
			&entry.ActiveCount,
			&entry.AllocationEfficiency,
		); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}

		entry.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp of cycle %s: %w", entry.CycleID, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func defaultHistoryPath() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, historyDataDir, historyFileName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", historyDataDir, historyFileName), nil
}
