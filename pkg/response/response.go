package response

import (
	"encoding/json"
	"net/http"

	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
)

type Message struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Message{Message: message})
}

// Fail writes err as a client-safe message. notFound is the text used for
// ErrNotFound so each resource keeps its own wording.
func Fail(w http.ResponseWriter, err error, notFound string) {
	status := apperror.Status(err)
	var msg string
	switch status {
	case http.StatusBadRequest:
		msg = err.Error()
	case http.StatusNotFound:
		msg = notFound
	case http.StatusUnauthorized:
		msg = "Unauthorized"
	case http.StatusForbidden:
		msg = "Forbidden"
	case http.StatusRequestEntityTooLarge:
		msg = "Request is too large."
	default:
		logger.Sugar.Errorf("Request failed: %v", err)
		msg = "Internal server error."
	}
	Error(w, status, msg)
}
