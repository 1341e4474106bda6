package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"diarioweb/config/database"
	"diarioweb/internal/article/model"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

const articleColumns = `id, title, COALESCE(content, ''), COALESCE(author, ''), COALESCE(link, '')`

type ArticleRepository struct {
	DB *database.DB
}

func NewArticleRepository(db *database.DB) *ArticleRepository {
	return &ArticleRepository{DB: db}
}

func (r *ArticleRepository) List(ctx context.Context) ([]model.Article, error) {
	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(`SELECT `+articleColumns+` FROM articles ORDER BY id`))
	if err != nil {
		logger.Sugar.Errorf("Failed to list articles: %v", err)
		return nil, fmt.Errorf("list articles: %w", apperror.ErrStore)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.Link); err != nil {
			logger.Sugar.Errorf("Failed to scan article: %v", err)
			return nil, fmt.Errorf("scan article: %w", apperror.ErrStore)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to iterate articles: %v", err)
		return nil, fmt.Errorf("list articles: %w", apperror.ErrStore)
	}
	return articles, nil
}

func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (model.Article, error) {
	var a model.Article
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(`SELECT `+articleColumns+` FROM articles WHERE id = ?`), id).
		Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.Link)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Article{}, fmt.Errorf("article %d: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get article %d: %v", id, err)
		return model.Article{}, fmt.Errorf("get article: %w", apperror.ErrStore)
	}
	return a, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a model.Article) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, r.DB.Rebind(
		`INSERT INTO articles (title, content, author, link) VALUES (?, ?, ?, ?) RETURNING id`),
		a.Title, a.Content, a.Author, a.Link).Scan(&id)
	if err != nil {
		logger.Sugar.Errorf("Failed to create article: %v", err)
		return 0, fmt.Errorf("create article: %w", apperror.ErrStore)
	}
	return id, nil
}

func (r *ArticleRepository) Update(ctx context.Context, a model.Article) error {
	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(
		`UPDATE articles SET title = ?, content = ?, author = ?, link = ? WHERE id = ?`),
		a.Title, a.Content, a.Author, a.Link, a.ID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update article %d: %v", a.ID, err)
		return fmt.Errorf("update article: %w", apperror.ErrStore)
	}
	return checkAffected(result, a.ID)
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM articles WHERE id = ?`), id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete article %d: %v", id, err)
		return fmt.Errorf("delete article: %w", apperror.ErrStore)
	}
	return checkAffected(result, id)
}

func checkAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", apperror.ErrStore)
	}
	if n == 0 {
		return fmt.Errorf("article %d: %w", id, apperror.ErrNotFound)
	}
	return nil
}
