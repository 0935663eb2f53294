package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresUserRepository persists Telegram identities in PostgreSQL.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// EnsureSchema creates the users table when it does not exist.
func (r *PostgresUserRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			telegram_id BIGINT UNIQUE,
			username TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// SaveUser records a Telegram identity, ignoring duplicates.
func (r *PostgresUserRepository) SaveUser(ctx context.Context, telegramID int64, username string) error {
	query := `
		INSERT INTO users (telegram_id, username, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, telegramID, username, time.Now())
	return err
}

// CountUsers returns the number of distinct identities seen.
func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
