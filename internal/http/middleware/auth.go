// Package middleware holds the bearer-token guard that sits in front
// of every admin route.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"studentportal/internal/auth"
	"studentportal/internal/utils/response"
)

// TokenVerifier is the slice of the auth service the guard needs.
// Depending on an interface keeps the middleware testable with a stub.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// RequireAuth wraps a handler so it only runs for requests carrying a
// valid "Authorization: Bearer <token>" header. Anything else — no
// header, wrong scheme, bad signature, expired token — gets a 401 and
// the wrapped handler never executes.
//
// Usage mirrors the other handler factories:
//
//	router.HandleFunc("GET /api/students",
//	    middleware.RequireAuth(gate, student.GetList(storage)))
func RequireAuth(verifier TokenVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			slog.Warn("unauthorized request: missing bearer token",
				slog.String("path", r.URL.Path))
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Message("Unauthorized"))
			return
		}

		if _, err := verifier.Verify(token); err != nil {
			slog.Warn("unauthorized request: token rejected",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Message("Invalid token"))
			return
		}

		next(w, r)
	}
}
