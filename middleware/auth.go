package middleware

import (
	"errors"
	"net/http"

	"diarioweb/internal/access"
	"diarioweb/pkg/apperror"
	"diarioweb/pkg/logger"
	"diarioweb/pkg/response"
)

// OwnerHandlerFunc is a handler that only runs for a verified owner.
type OwnerHandlerFunc func(w http.ResponseWriter, r *http.Request, auth access.AuthContext)

type Authorizer interface {
	Authorize(token string) (access.AuthContext, error)
}

// RequireOwner verifies the bearer token and hands the proven identity to
// next. A missing token is 401, a token that fails verification is 403.
func RequireOwner(gate Authorizer, next OwnerHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := access.BearerToken(r.Header.Get("Authorization"))

		auth, err := gate.Authorize(token)
		switch {
		case errors.Is(err, apperror.ErrUnauthenticated):
			response.Error(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		case err != nil:
			logger.Sugar.Warnf("Invalid token on %s %s: %v", r.Method, r.URL.Path, err)
			response.Error(w, http.StatusForbidden, "Forbidden: Invalid or expired token")
			return
		}
		next(w, r, auth)
	}
}
