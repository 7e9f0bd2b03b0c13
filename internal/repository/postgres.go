package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

// PostgresStore keeps records in PostgreSQL, for the server deployment where
// several workers share one cache.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS records (
	cache_key  TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	tax_year   TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_records_tax_year ON records (tax_year);
CREATE TABLE IF NOT EXISTS recommendations (
	tax_year   TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func NewPostgresStore(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "create postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, common.NewAppError("STORE_OPEN", "ping postgres", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.NewAppError("STORE_MIGRATE", "apply postgres schema", err)
	}
	logger.Info("store.postgres.open")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (entity.ReconciledRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM records WHERE cache_key = $1`, key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ReconciledRecord{}, common.ErrNotFound
	}
	if err != nil {
		return entity.ReconciledRecord{}, fmt.Errorf("query record: %w", err)
	}
	var rec entity.ReconciledRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return entity.ReconciledRecord{}, fmt.Errorf("decode stored record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, rec entity.ReconciledRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO records (cache_key, category, tax_year, payload, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (cache_key) DO UPDATE SET
			category = EXCLUDED.category,
			tax_year = EXCLUDED.tax_year,
			payload = EXCLUDED.payload,
			updated_at = now()`,
		key, string(rec.Category), rec.TaxYear, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]entity.ReconciledRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM records ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []entity.ReconciledRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec entity.ReconciledRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			s.logger.Warn("store.postgres.decode_error", "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveRecommendation(ctx context.Context, rec tax.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendation: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO recommendations (tax_year, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tax_year) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = now()`,
		rec.TaxYear, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert recommendation: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestRecommendation(ctx context.Context, year string) (tax.Recommendation, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM recommendations WHERE tax_year = $1`, year,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return tax.Recommendation{}, common.ErrNotFound
	}
	if err != nil {
		return tax.Recommendation{}, fmt.Errorf("query recommendation: %w", err)
	}
	var rec tax.Recommendation
	if err := json.Unmarshal(payload, &rec); err != nil {
		return tax.Recommendation{}, fmt.Errorf("decode stored recommendation: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
