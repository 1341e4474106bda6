package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"diarioweb/config/database"
	"diarioweb/internal/text/model"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

type TextRepository struct {
	DB *database.DB
}

func NewTextRepository(db *database.DB) *TextRepository {
	return &TextRepository{DB: db}
}

// List returns the public summary of every text; content and secrets are
// never selected.
func (r *TextRepository) List(ctx context.Context) ([]model.TextSummary, error) {
	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(
		`SELECT id, title, COALESCE(synopsis, ''), is_private FROM personal_texts ORDER BY id`))
	if err != nil {
		logger.Sugar.Errorf("Failed to list personal texts: %v", err)
		return nil, fmt.Errorf("list texts: %w", apperror.ErrStore)
	}
	defer rows.Close()

	texts := []model.TextSummary{}
	for rows.Next() {
		var t model.TextSummary
		if err := rows.Scan(&t.ID, &t.Title, &t.Synopsis, &t.IsPrivate); err != nil {
			logger.Sugar.Errorf("Failed to scan personal text: %v", err)
			return nil, fmt.Errorf("scan text: %w", apperror.ErrStore)
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate personal texts: %v", err)
		return nil, fmt.Errorf("list texts: %w", apperror.ErrStore)
	}
	return texts, nil
}

func (r *TextRepository) FindByID(ctx context.Context, id int64) (model.PersonalText, error) {
	var (
		t        model.PersonalText
		password sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`SELECT id, title, COALESCE(synopsis, ''), COALESCE(content, ''), is_private, password
		FROM personal_texts WHERE id = ?`), id).
		Scan(&t.ID, &t.Title, &t.Synopsis, &t.Content, &t.IsPrivate, &password)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PersonalText{}, fmt.Errorf("text %d: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get personal text %d: %v", id, err)
		return model.PersonalText{}, fmt.Errorf("get text: %w", apperror.ErrStore)
	}
	if password.Valid && password.String != "" {
		t.Password = &password.String
	}
	return t, nil
}

func (r *TextRepository) Create(ctx context.Context, t model.PersonalText) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`INSERT INTO personal_texts (title, synopsis, content, is_private, password)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		t.Title, t.Synopsis, t.Content, t.IsPrivate, nullable(t.Password)).Scan(&id)
	if err != nil {
		logger.Sugar.Errorf("Failed to create personal text: %v", err)
		return 0, fmt.Errorf("create text: %w", apperror.ErrStore)
	}
	return id, nil
}

func (r *TextRepository) Update(ctx context.Context, t model.PersonalText) error {
	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		`UPDATE personal_texts SET title = ?, synopsis = ?, content = ?, is_private = ?, password = ?
		WHERE id = ?`),
		t.Title, t.Synopsis, t.Content, t.IsPrivate, nullable(t.Password), t.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update personal text %d: %v", t.ID, err)
		return fmt.Errorf("update text: %w", apperror.ErrStore)
	}
	return affectedOne(result, t.ID)
}

func (r *TextRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM personal_texts WHERE id = ?`), id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete personal text %d: %v", id, err)
		return fmt.Errorf("delete text: %w", apperror.ErrStore)
	}
	return affectedOne(result, id)
}

func affectedOne(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		logger.Sugar.Errorf("Failed to read affected rows for text %d: %v", id, err)
		return fmt.Errorf("rows affected: %w", apperror.ErrStore)
	}
	if n == 0 {
		return fmt.Errorf("text %d: %w", id, apperror.ErrNotFound)
	}
	return nil
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
