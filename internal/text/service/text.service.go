package service

import (
	"context"
	"strings"

	"diarioweb/internal/text/model"
	"diarioweb/pkg/apperror"
)

type TextStore interface {
	List(ctx context.Context) ([]model.TextSummary, error)
	FindByID(ctx context.Context, id int64) (model.PersonalText, error)
	Create(ctx context.Context, t model.PersonalText) (int64, error)
	Update(ctx context.Context, t model.PersonalText) error
	Delete(ctx context.Context, id int64) error
}

type Redactor interface {
	RedactForVisibility(text model.PersonalText, supplied *string) (model.TextView, error)
}

type TextService struct {
	Repo TextStore
	Gate Redactor
}

func NewTextService(repo TextStore, gate Redactor) *TextService {
	return &TextService{Repo: repo, Gate: gate}
}

func (s *TextService) List(ctx context.Context) ([]model.TextSummary, error) {
	return s.Repo.List(ctx)
}

// Get returns the reader's view of a text. ErrSecretRequired and
// ErrSecretWrong come back together with a redacted view that is still
// meant to be sent.
func (s *TextService) Get(ctx context.Context, id int64, secret *string) (model.TextView, error) {
	text, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return model.TextView{}, err
	}
	return s.Gate.RedactForVisibility(text, secret)
}

func (s *TextService) Create(ctx context.Context, req model.TextRequest) (int64, error) {
	t, err := fromRequest(req)
	if err != nil {
		return 0, err
	}
	return s.Repo.Create(ctx, t)
}

func (s *TextService) Update(ctx context.Context, id int64, req model.TextRequest) error {
	t, err := fromRequest(req)
	if err != nil {
		return err
	}
	t.ID = id
	return s.Repo.Update(ctx, t)
}

func (s *TextService) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}

// fromRequest validates a write. Public texts never keep a gate-secret.
func fromRequest(req model.TextRequest) (model.PersonalText, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.PersonalText{}, apperror.Validation("Title is required.")
	}
	t := model.PersonalText{
		Title:     title,
		Synopsis:  req.Synopsis,
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	}
	if req.IsPrivate {
		if req.Password == "" {
			return model.PersonalText{}, apperror.Validation("A password is required for a private text.")
		}
		password := req.Password
		t.Password = &password
	}
	return t, nil
}
