// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses may return any JSON shape (a record, a list, a
// token…). Error responses — and a few informational successes like
// delete — always look like:
//
//	{ "message": "roll number must be unique" }
//
// which is the envelope both the admin UI and the public portal expect.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard message envelope.
type Response struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status
// code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Message wraps a plain string into the standard envelope.
func Message(msg string) Response {
	return Response{Message: msg}
}

// GeneralError wraps any Go error into the standard envelope.
// Use this for unexpected errors (DB failures, decode errors, etc.)
func GeneralError(err error) Response {
	return Response{Message: err.Error()}
}

// ValidationError converts a slice of validator.FieldError values into
// a single human-readable Response, one sentence per failing field:
//
//	{ "message": "field Name is required, field Roll is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{Message: strings.Join(errMessages, ", ")}
}
