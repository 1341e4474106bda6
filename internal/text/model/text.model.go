package model

// PersonalText is a stored row. Password is the optional gate-secret; it is
// never serialized.
type PersonalText struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Synopsis  string  `json:"synopsis"`
	Content   string  `json:"content"`
	IsPrivate bool    `json:"is_private"`
	Password  *string `json:"-"`
}

type TextSummary struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Synopsis  string `json:"synopsis"`
	IsPrivate bool   `json:"is_private"`
}

// TextView is what a reader of a single text receives. Content is nil when
// the text was redacted and Message then asks for the secret.
type TextView struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Synopsis  string  `json:"synopsis"`
	Content   *string `json:"content,omitempty"`
	IsPrivate bool    `json:"is_private"`
	Message   string  `json:"message,omitempty"`
}

type TextRequest struct {
	Title     string `json:"title"`
	Synopsis  string `json:"synopsis"`
	Content   string `json:"content"`
	IsPrivate bool   `json:"is_private"`
	Password  string `json:"password"`
}

type CreateTextResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
