package handler

import (
	"net/http"

	"diarioweb/internal/access"
	"diarioweb/internal/text/model"
	"diarioweb/internal/text/service"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
	"diarioweb/pkg/request"
	"diarioweb/pkg/response"
)

type TextHandler struct {
	Service *service.TextService
}

func NewTextHandler(service *service.TextService) *TextHandler {
	return &TextHandler{Service: service}
}

func (h *TextHandler) ListTexts(w http.ResponseWriter, r *http.Request) {
	texts, err := h.Service.List(r.Context())
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	response.JSON(w, http.StatusOK, texts)
}

// GetText answers with the full text, or with the redacted view and 401
// when the text is gated and ?password= does not match.
func (h *TextHandler) GetText(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}

	var secret *string
	if q := r.URL.Query(); q.Has("password") {
		p := q.Get("password")
		secret = &p
	}

	view, err := h.Service.Get(r.Context(), id, secret)
	switch {
	case apperror.IsRedaction(err):
		response.JSON(w, http.StatusUnauthorized, view)
	case err != nil:
		response.Fail(w, err, "Text not found.")
	default:
		response.JSON(w, http.StatusOK, view)
	}
}

func (h *TextHandler) CreateText(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	var req model.TextRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Fail(w, err, "")
		return
	}

	id, err := h.Service.Create(r.Context(), req)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	logger.Sugar.Infof("%s created personal text %d", auth.Name, id)
	response.JSON(w, http.StatusCreated, model.CreateTextResponse{ID: id, Message: "Personal text created successfully."})
}

func (h *TextHandler) UpdateText(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	var req model.TextRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Fail(w, err, "")
		return
	}

	if err := h.Service.Update(r.Context(), id, req); err != nil {
		response.Fail(w, err, "Text not found or no changes made.")
		return
	}
	logger.Sugar.Infof("%s updated personal text %d", auth.Name, id)
	response.JSON(w, http.StatusOK, response.Message{Message: "Personal text updated successfully."})
}

func (h *TextHandler) DeleteText(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	id, err := request.ID(r)
	if err != nil {
		response.Fail(w, err, "")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		response.Fail(w, err, "Text not found.")
		return
	}
	logger.Sugar.Infof("%s deleted personal text %d", auth.Name, id)
	response.JSON(w, http.StatusOK, response.Message{Message: "Personal text deleted successfully."})
}
