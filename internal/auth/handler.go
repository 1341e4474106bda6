package handler

import (
	"errors"
	"fmt"
	"net/http"

	"diarioweb/internal/access"
	"diarioweb/internal/auth/model"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
	"diarioweb/pkg/request"
	"diarioweb/pkg/response"
)

type Authenticator interface {
	Authenticate(username, password string) (string, error)
}

type AuthHandler struct {
	Gate Authenticator
}

func NewAuthHandler(gate Authenticator) *AuthHandler {
	return &AuthHandler{Gate: gate}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.Fail(w, err, "")
		return
	}

	token, err := h.Gate.Authenticate(req.Username, req.Password)
	if errors.Is(err, apperror.ErrInvalidCredentials) {
		logger.Sugar.Warnf("Failed login attempt from %s", r.RemoteAddr)
		response.Error(w, http.StatusBadRequest, "Invalid Credentials")
		return
	}
	if err != nil {
		response.Fail(w, err, "")
		return
	}
	response.JSON(w, http.StatusOK, model.LoginResponse{AccessToken: token})
}

func (h *AuthHandler) Protected(w http.ResponseWriter, r *http.Request, auth access.AuthContext) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Welcome, %s! This is a protected route.", auth.Name)
}
