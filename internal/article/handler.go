package handler

import (
	"net/http"

	"diarioweb/internal/access"
	"diarioweb/internal/article/model"
	"diarioweb/internal/article/service"
	"diarioweb/pkg/logger"
	"diarioweb/pkg/request"
	"diarioweb/pkg/response"
)

type ArticleHandler struct {
	Service *service.ArticleService
}

func NewArticleHandler(service *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{Service: service}
}

func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Service.List(r.Context())
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	response.JSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	article, err := h.Service.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, err, "Article not found.")
		return
	}
	response.JSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	var req model.ArticleRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Fail(w, err, "")
		return
	}
	id, err := h.Service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	logger.Sugar.Infof("%s created article %d", auth.Name, id)
	response.JSON(w, http.StatusCreated, model.CreateArticleResponse{ID: id, Message: "Article created successfully."})
}

func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	var req model.ArticleRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Fail(w, err, "")
		return
	}
	if err := h.Service.Update(r.Context(), id, req); err != nil {
		response.Fail(w, err, "Article not found or no changes made.")
		return
	}
	logger.Sugar.Infof("%s updated article %d", auth.Name, id)
	response.JSON(w, http.StatusOK, response.Message{Message: "Article updated successfully."})
}

func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		response.Fail(w, err, "Article not found.")
		return
	}
	logger.Sugar.Infof("%s deleted article %d", auth.Name, id)
	response.JSON(w, http.StatusOK, response.Message{Message: "Article deleted successfully."})
}
