package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore persists jobs in a single sim_jobs table for deployments
// that already run Postgres and prefer it over Redis.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

const simJobsSchema = `
CREATE TABLE IF NOT EXISTS sim_jobs (
	asset_id            TEXT NOT NULL,
	kind                TEXT NOT NULL,
	target_module       TEXT NOT NULL,
	base_value          DOUBLE PRECISION NOT NULL,
	variance            DOUBLE PRECISION NOT NULL,
	anomaly_probability DOUBLE PRECISION NOT NULL,
	interval_millis     BIGINT NOT NULL,
	enabled             BOOLEAN NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (asset_id, kind)
)`

// NewPostgresStore opens the connection, verifies it, and ensures the
// sim_jobs table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, simJobsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure sim_jobs schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreWithDB wraps an existing connection without touching the
// schema. Used by tests.
func NewPostgresStoreWithDB(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Put upserts a job under its key.
func (p *PostgresStore) Put(ctx context.Context, job Job) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sim_jobs (asset_id, kind, target_module, base_value, variance,
			anomaly_probability, interval_millis, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (asset_id, kind) DO UPDATE SET
			target_module = EXCLUDED.target_module,
			base_value = EXCLUDED.base_value,
			variance = EXCLUDED.variance,
			anomaly_probability = EXCLUDED.anomaly_probability,
			interval_millis = EXCLUDED.interval_millis,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
	`, job.AssetID, job.Kind, job.TargetModule, job.BaseValue, job.Variance,
		job.AnomalyProbability, job.IntervalMillis, job.Enabled, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

// Delete removes a job; unknown keys are ignored.
func (p *PostgresStore) Delete(ctx context.Context, key Key) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM sim_jobs WHERE asset_id = $1 AND kind = $2`,
		key.AssetID, key.Kind)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Get fetches a job by key.
func (p *PostgresStore) Get(ctx context.Context, key Key) (Job, error) {
	var row jobRow
	err := p.db.GetContext(ctx, &row, `
		SELECT asset_id, kind, target_module, base_value, variance,
			anomaly_probability, interval_millis, enabled, created_at, updated_at
		FROM sim_jobs WHERE asset_id = $1 AND kind = $2
	`, key.AssetID, key.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("fetch job: %w", err)
	}
	return row.toJob(), nil
}

// List returns every stored job.
func (p *PostgresStore) List(ctx context.Context) ([]Job, error) {
	var rows []jobRow
	err := p.db.SelectContext(ctx, &rows, `
		SELECT asset_id, kind, target_module, base_value, variance,
			anomaly_probability, interval_millis, enabled, created_at, updated_at
		FROM sim_jobs ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.toJob())
	}
	return jobs, nil
}

// Close releases the database handle.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

type jobRow struct {
	AssetID            string    `db:"asset_id"`
	Kind               string    `db:"kind"`
	TargetModule       string    `db:"target_module"`
	BaseValue          float64   `db:"base_value"`
	Variance           float64   `db:"variance"`
	AnomalyProbability float64   `db:"anomaly_probability"`
	IntervalMillis     int64     `db:"interval_millis"`
	Enabled            bool      `db:"enabled"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (r jobRow) toJob() Job {
	return Job{
		AssetID:            r.AssetID,
		Kind:               r.Kind,
		TargetModule:       r.TargetModule,
		BaseValue:          r.BaseValue,
		Variance:           r.Variance,
		AnomalyProbability: r.AnomalyProbability,
		IntervalMillis:     r.IntervalMillis,
		Enabled:            r.Enabled,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
