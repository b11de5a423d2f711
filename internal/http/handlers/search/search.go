// Package search contains the public result-lookup handler. This is
// the one data endpoint with no auth in front of it: a student proves
// knowledge of their own roll number AND date of birth, and gets back
// exactly that one record.
package search

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"studentportal/internal/storage"
	"studentportal/internal/types"
	"studentportal/internal/utils/response"
)

type request struct {
	Roll string `json:"roll"`
	DOB  string `json:"dob"`
}

// New handles POST /api/search.
//
// Request body (JSON):
//
//	{ "roll": "R101", "dob": "2008-04-12" }
//
// The dob matches by calendar day: any stored instant between
// 00:00:00.000 and 23:59:59.999 of that day (local time) counts.
//
// Success response (200 OK): the matching record.
//
// Error responses:
//
//	400 Bad Request — roll or dob missing, or dob unparsable
//	404 Not Found   — no record with that roll born on that day
//	500 Internal    — database error
//
// There is no rate limiting and no lockout — every call is independent
// and stateless.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req request

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		req.Roll = strings.TrimSpace(req.Roll)
		if req.Roll == "" || req.DOB == "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("roll and dob required"))
			return
		}

		dob, err := types.ParseDate(req.DOB)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		slog.Info("public result lookup", slog.String("roll", req.Roll))

		dayStart, dayEnd := dob.DayBounds()
		rec, err := store.FindByRollAndDOB(req.Roll, dayStart, dayEnd)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Message("Not found"))
				return
			}
			slog.Error("error searching student",
				slog.String("roll", req.Roll),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, rec)
	}
}
