package model

type Article struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Link    string `json:"link"`
}

type ArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Link    string `json:"link"`
}

type CreateArticleResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
