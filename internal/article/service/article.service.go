package service

import (
	"context"
	"strings"

	"diarioweb/internal/article/model"
	"diarioweb/pkg/apperror"
)

type ArticleStore interface {
	List(ctx context.Context) ([]model.Article, error)
	FindByID(ctx context.Context, id int64) (model.Article, error)
	Create(ctx context.Context, a model.Article) (int64, error)
	Update(ctx context.Context, a model.Article) error
	Delete(ctx context.Context, id int64) error
}

type ArticleService struct {
	Repo ArticleStore
}

func NewArticleService(repo ArticleStore) *ArticleService {
	return &ArticleService{Repo: repo}
}

func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	return s.Repo.List(ctx)
}

func (s *ArticleService) Get(ctx context.Context, id int64) (model.Article, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, req model.ArticleRequest) (int64, error) {
	a, err := fromRequest(req)
	if err != nil {
		return 0, err
	}
	return s.Repo.Create(ctx, a)
}

func (s *ArticleService) Update(ctx context.Context, id int64, req model.ArticleRequest) error {
	a, err := fromRequest(req)
	if err != nil {
		return err
	}
	a.ID = id
	return s.Repo.Update(ctx, a)
}

func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}

func fromRequest(req model.ArticleRequest) (model.Article, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Article{}, apperror.Validation("Title is required.")
	}
	return model.Article{
		Title:   title,
		Content: req.Content,
		Author:  strings.TrimSpace(req.Author),
		Link:    strings.TrimSpace(req.Link),
	}, nil
}
