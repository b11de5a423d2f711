// Package login contains the admin login handler.
package login

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"studentportal/internal/utils/response"
)

// Authenticator is the slice of the auth service the handler needs.
type Authenticator interface {
	Login(username, password string) (string, error)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// New handles POST /api/login.
//
// Request body (JSON):
//
//	{ "username": "Z2A", "password": "..." }
//
// Success response (200 OK):
//
//	{ "token": "<signed JWT, valid 8h>" }
//
// Error responses:
//
//	400 Bad Request  — empty or malformed body
//	401 Unauthorized — pair does not match the configured admin
func New(gate Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds credentials

		err := json.NewDecoder(r.Body).Decode(&creds)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("request body is empty"))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		token, err := gate.Login(creds.Username, creds.Password)
		if err != nil {
			// Deliberately the same message for wrong user and wrong
			// password — no hints for guessing.
			slog.Warn("failed login attempt",
				slog.String("username", creds.Username))
			response.WriteJSON(w, http.StatusUnauthorized,
				response.Message("Bad credentials"))
			return
		}

		slog.Info("admin logged in")
		response.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
