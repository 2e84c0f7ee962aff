package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. This is the default
// backend for single-host CLI use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS checkpoints (
	platform   TEXT PRIMARY KEY,
	last_run   DATETIME NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id           TEXT PRIMARY KEY,
	platform     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	result       TEXT,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_platform ON sync_runs(platform);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LastRun(ctx context.Context, platform string) (*time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_run FROM checkpoints WHERE platform = ?`, platform,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: last run for %s", platform)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse checkpoint for %s", platform)
	}
	return &t, nil
}

func (s *SQLiteStore) SetLastRun(ctx context.Context, platform string, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (platform, last_run, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(platform) DO UPDATE SET last_run = excluded.last_run, updated_at = datetime('now')`,
		platform, t.UTC().Format(time.RFC3339Nano),
	)
	return eris.Wrapf(err, "sqlite: set last run for %s", platform)
}

func (s *SQLiteStore) StartRun(ctx context.Context, platform string, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, platform, status, started_at) VALUES (?, ?, ?, ?)`,
		id, platform, StatusRunning, startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: start run for %s", platform)
	}
	return id, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *RunResult) error {
	var resultJSON []byte
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal run result")
		}
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, completed_at = datetime('now'), result = ? WHERE id = ?`,
		StatusComplete, string(resultJSON), runID,
	)
	return eris.Wrapf(err, "sqlite: complete run %s", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, completed_at = datetime('now'), error = ? WHERE id = ?`,
		StatusFailed, errMsg, runID,
	)
	return eris.Wrapf(err, "sqlite: fail run %s", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	query := `SELECT id, platform, status, started_at, completed_at, result, error
	          FROM sync_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var startedAt string
		var completedAt, resultJSON, errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.Platform, &e.Status, &startedAt, &completedAt, &resultJSON, &errMsg); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: parse started_at")
		}
		if completedAt.Valid && completedAt.String != "" {
			// datetime('now') stores "YYYY-MM-DD HH:MM:SS".
			if t, err := time.Parse("2006-01-02 15:04:05", completedAt.String); err == nil {
				e.CompletedAt = &t
			}
		}
		if resultJSON.Valid && resultJSON.String != "" {
			var result RunResult
			if err := json.Unmarshal([]byte(resultJSON.String), &result); err == nil {
				e.Result = &result
			}
		}
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list runs")
}
