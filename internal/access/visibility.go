package access

import (
	"diarioweb/internal/text/model"
	"diarioweb/pkg/apperror"
)

const SecretPrompt = "Password required for this text."

// RedactForVisibility decides how much of a personal text a reader sees.
//
// Public texts, and private texts without a stored secret, come back whole.
// A private text comes back whole only when supplied equals the stored
// secret; otherwise the reader gets id, title, synopsis and the prompt,
// together with ErrSecretRequired (nothing supplied) or ErrSecretWrong.
// Those two errors are not failures: the view is still meant to be sent.
//
// The comparison is plain equality against a plain-text value, unlike the
// owner password. Keep it that way unless gate-secrets get migrated.
func (g *Gate) RedactForVisibility(text model.PersonalText, supplied *string) (model.TextView, error) {
	if !text.IsPrivate || text.Password == nil {
		return fullView(text), nil
	}

	if supplied == nil || *supplied == "" {
		return redactedView(text), apperror.ErrSecretRequired
	}
	if *supplied != *text.Password {
		return redactedView(text), apperror.ErrSecretWrong
	}
	return fullView(text), nil
}

func fullView(t model.PersonalText) model.TextView {
	content := t.Content
	return model.TextView{
		ID:        t.ID,
		Title:     t.Title,
		Synopsis:  t.Synopsis,
		Content:   &content,
		IsPrivate: t.IsPrivate,
	}
}

func redactedView(t model.PersonalText) model.TextView {
	return model.TextView{
		ID:        t.ID,
		Title:     t.Title,
		Synopsis:  t.Synopsis,
		IsPrivate: true,
		Message:   SecretPrompt,
	}
}
