package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rfaria/traindesk/libs/db"
)

// PostgresSnapshots stores records in a single upsert table. Pick this
// driver (STORE_DRIVER=postgres) when the deployment already runs Postgres
// and wants real durability.
type PostgresSnapshots struct {
	pool *db.Pool
}

func NewPostgresSnapshots(pool *db.Pool) *PostgresSnapshots {
	return &PostgresSnapshots{pool: pool}
}

// Migrate creates the snapshots table if missing.
func (s *PostgresSnapshots) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			name text PRIMARY KEY,
			payload jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *PostgresSnapshots) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM snapshots WHERE name = $1
	`, name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *PostgresSnapshots) Save(ctx context.Context, name string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO snapshots (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload,
			updated_at = now()
	`, name, payload)
	return err
}
