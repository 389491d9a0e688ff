package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"election/internal/platform/storage"
	"election/internal/platform/storage/migrate"
	"election/internal/secrets/migrations"
	"election/pkg/platform/sentinel"
)

// SQLRegistry keeps secrets in a `secrets` table next to the election data.
// Callers must provision every secret before opening store transactions on a
// single-connection SQLite handle; the Protector does so at construction.
type SQLRegistry struct {
	db      *sql.DB
	dialect storage.Dialect
}

// NewSQLRegistry applies the secrets schema and returns the registry.
func NewSQLRegistry(ctx context.Context, db *sql.DB, dialect storage.Dialect) (*SQLRegistry, error) {
	if err := migrate.Apply(ctx, db, dialect, migrations.FS, string(dialect)); err != nil {
		return nil, fmt.Errorf("migrate secrets: %w", err)
	}
	return &SQLRegistry{db: db, dialect: dialect}, nil
}

func (r *SQLRegistry) Get(ctx context.Context, name string) ([]byte, error) {
	var secret []byte
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT value FROM secrets WHERE name = ?`), name).Scan(&secret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get secret: %w", err)
	}
	return secret, nil
}

func (r *SQLRegistry) PutIfAbsent(ctx context.Context, name string, value []byte) ([]byte, error) {
	_, err := r.db.ExecContext(ctx,
		r.dialect.Rebind(`INSERT INTO secrets (name, value) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`),
		name, value)
	if err != nil {
		return nil, fmt.Errorf("put secret: %w", err)
	}
	return r.Get(ctx, name)
}
