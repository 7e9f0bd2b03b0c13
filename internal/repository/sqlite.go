package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

// SQLiteStore keeps records in a local SQLite file. This is the default store
// for single-user CLI runs; no server required.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	cache_key  TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	tax_year   TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_records_tax_year ON records (tax_year);
CREATE TABLE IF NOT EXISTS recommendations (
	tax_year   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "open sqlite database", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("STORE_MIGRATE", "apply sqlite schema", err)
	}
	logger.Info("store.sqlite.open", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (entity.ReconciledRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE cache_key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ReconciledRecord{}, common.ErrNotFound
	}
	if err != nil {
		return entity.ReconciledRecord{}, fmt.Errorf("query record: %w", err)
	}
	var rec entity.ReconciledRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return entity.ReconciledRecord{}, fmt.Errorf("decode stored record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, rec entity.ReconciledRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (cache_key, category, tax_year, payload, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (cache_key) DO UPDATE SET
			category = excluded.category,
			tax_year = excluded.tax_year,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		key, string(rec.Category), rec.TaxYear, string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]entity.ReconciledRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []entity.ReconciledRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec entity.ReconciledRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			s.logger.Warn("store.sqlite.decode_error", "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveRecommendation(ctx context.Context, rec tax.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendation: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recommendations (tax_year, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (tax_year) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		rec.TaxYear, string(payload),
	)
	if err != nil {
		return fmt.Errorf("upsert recommendation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestRecommendation(ctx context.Context, year string) (tax.Recommendation, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM recommendations WHERE tax_year = ?`, year,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return tax.Recommendation{}, common.ErrNotFound
	}
	if err != nil {
		return tax.Recommendation{}, fmt.Errorf("query recommendation: %w", err)
	}
	var rec tax.Recommendation
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return tax.Recommendation{}, fmt.Errorf("decode stored recommendation: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
