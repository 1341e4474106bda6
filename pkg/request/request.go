package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"diarioweb/pkg/apperror"

	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 1 << 20

// ID parses the {id} route parameter. Only positive integers are ids.
func ID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("Invalid id.")
	}
	return id, nil
}

// DecodeJSON reads a JSON body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ErrTooLarge
		}
		if errors.Is(err, io.EOF) {
			return apperror.Validation("Request body is empty.")
		}
		return apperror.Validation("Invalid request body.")
	}
	return nil
}
