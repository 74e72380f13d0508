package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"cropsight/internal/entity"
)

// PostgresStore keeps records in a diseases table with the record body as
// jsonb.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, initTableQuery); err != nil {
		return nil, fmt.Errorf("init diseases table: %w", err)
	}

	return &PostgresStore{
		db:     db,
		logger: logger.Named("postgres"),
	}, nil
}

// Seed upserts the dataset, so repeating it on startup is safe.
func (r *PostgresStore) Seed(ctx context.Context, records map[string]entity.EnrichmentRecord) error {
	for key, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %q: %w", key, err)
		}

		if _, err := r.db.ExecContext(ctx, upsertRecordQuery, key, rec.Crop, b); err != nil {
			return fmt.Errorf("seed record %q: %w", key, err)
		}
	}

	r.logger.Info("seeded disease records", zap.Int("count", len(records)))

	return nil
}

func (r *PostgresStore) Lookup(ctx context.Context, key string) (*entity.EnrichmentRecord, error) {
	var b []byte
	if err := r.db.QueryRowContext(ctx, readRecordQuery, key).Scan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read record %q: %w", key, err)
	}

	var rec entity.EnrichmentRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse record %q: %w", key, err)
	}

	return &rec, nil
}

func (r *PostgresStore) Search(ctx context.Context, crop string) ([]entity.EnrichmentRecord, error) {
	rows, err := r.db.QueryContext(ctx, searchByCropQuery, crop)
	if err != nil {
		return nil, fmt.Errorf("search by crop %q: %w", crop, err)
	}
	defer rows.Close()

	var found []entity.EnrichmentRecord
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}

		var rec entity.EnrichmentRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, err
		}

		found = append(found, rec)
	}

	return found, rows.Err()
}

func (r *PostgresStore) Close() error {
	return r.db.Close()
}
