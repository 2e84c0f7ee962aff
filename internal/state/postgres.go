package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-sync/internal/db"
)

// PostgresStore implements Store using pgxpool, for deployments where
// multiple hosts share sync state.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(5)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS checkpoints (
	platform   TEXT PRIMARY KEY,
	last_run   TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id           TEXT PRIMARY KEY,
	platform     TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	result       JSONB,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_platform ON sync_runs(platform);
CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LastRun(ctx context.Context, platform string) (*time.Time, error) {
	var t time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT last_run FROM checkpoints WHERE platform = $1`, platform,
	).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: last run for %s", platform)
	}
	return &t, nil
}

func (s *PostgresStore) SetLastRun(ctx context.Context, platform string, t time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checkpoints (platform, last_run, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (platform) DO UPDATE SET last_run = EXCLUDED.last_run, updated_at = now()`,
		platform, t.UTC(),
	)
	return eris.Wrapf(err, "postgres: set last run for %s", platform)
}

func (s *PostgresStore) StartRun(ctx context.Context, platform string, startedAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, platform, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, platform, StatusRunning, startedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: start run for %s", platform)
	}
	return id, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *RunResult) error {
	var resultJSON []byte
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal run result")
		}
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, completed_at = now(), result = $2 WHERE id = $3`,
		StatusComplete, resultJSON, runID,
	)
	return eris.Wrapf(err, "postgres: complete run %s", runID)
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_runs SET status = $1, completed_at = now(), error = $2 WHERE id = $3`,
		StatusFailed, errMsg, runID,
	)
	return eris.Wrapf(err, "postgres: fail run %s", runID)
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	query := `SELECT id, platform, status, started_at, completed_at, result, error
	          FROM sync_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var completedAt *time.Time
		var resultJSON []byte
		var errMsg *string
		if err := rows.Scan(&e.ID, &e.Platform, &e.Status, &e.StartedAt, &completedAt, &resultJSON, &errMsg); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		e.CompletedAt = completedAt
		if len(resultJSON) > 0 {
			var result RunResult
			if err := json.Unmarshal(resultJSON, &result); err == nil {
				e.Result = &result
			}
		}
		if errMsg != nil {
			e.Error = *errMsg
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list runs")
}
