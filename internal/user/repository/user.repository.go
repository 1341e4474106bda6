package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"diarioweb/config/database"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

// UserRepository resolves the owner's numeric row id. The row is seeded
// from configuration at startup; there is no API to create users.
type UserRepository struct {
	DB *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// EnsureOwner inserts the owner row if missing and keeps its hash in sync
// with configuration.
func (r *UserRepository) EnsureOwner(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`INSERT INTO users (username, password_hash) VALUES (?, ?)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash
		RETURNING id`), username, passwordHash).Scan(&id)
	if err != nil {
		logger.Sugar.Errorf("Failed to seed owner %s: %v", username, err)
		return 0, fmt.Errorf("seed owner: %w", apperror.ErrStore)
	}
	return id, nil
}

func (r *UserRepository) IDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(`SELECT id FROM users WHERE username = ?`), username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("user %s: %w", username, apperror.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to look up user %s: %v", username, err)
		return 0, fmt.Errorf("look up user: %w", apperror.ErrStore)
	}
	return id, nil
}
