// Package student contains the admin CRUD handlers for the Student
// resource. Every route in this package sits behind the bearer-token
// guard; none of them are reachable without a valid admin credential.
//
// HANDLER PATTERN — THE CLOSURE / FACTORY PATTERN:
// Each exported function accepts its dependencies (the storage
// interface) and returns the func(http.ResponseWriter, *http.Request)
// the router needs. The factory runs once at startup; the returned
// handler runs on every request and closes over the dependencies.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"studentportal/internal/storage"
	"studentportal/internal/types"
	"studentportal/internal/utils/response"

	"github.com/go-playground/validator/v10"
)

// validate is shared by create and update. The custom type func teaches
// the validator to treat types.Date as the time.Time it wraps, so
// `validate:"required"` rejects a missing dob.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(types.Date); ok {
			return d.Time
		}
		return nil
	}, types.Date{})
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
// Creates a new student record from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Asha", "roll": "R101", "dob": "2008-04-12",
//	  "grade": "10A", "subjects": ["Maths"], "marks": ["91"],
//	  "total": "91", "status": "Pass" }
//
// Success response (200 OK): the stored record, including the
// store-assigned id and timestamps.
//
// Error responses:
//
//	400 Bad Request — empty body, malformed JSON, failed validation,
//	                  or a roll number that is already taken
//	500 Internal    — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student record")

		var rec types.StudentRecord

		err := json.NewDecoder(r.Body).Decode(&rec)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("request body is empty"))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		rec.Normalize()

		if err := validate.Struct(rec); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		// Pre-check for a friendly conflict message. The UNIQUE index
		// in the store is the real enforcement — if another request
		// wins the race between this check and the insert, the insert
		// below still fails with ErrRollExists.
		_, err = store.GetStudentByRoll(rec.Roll)
		if err == nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("Roll number must be unique"))
			return
		}
		if !errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		created, err := store.InsertStudent(rec)
		if err != nil {
			if errors.Is(err, storage.ErrRollExists) {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Message("Roll number must be unique"))
				return
			}
			slog.Error("error creating student",
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		slog.Info("student record created",
			slog.String("id", created.ID),
			slog.String("roll", created.Roll))
		response.WriteJSON(w, http.StatusOK, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
// Fetches a single record by its store-assigned id.
//
// Error responses:
//
//	404 Not Found — no record with that id
//	500 Internal  — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student record", slog.String("id", id))

		rec, err := store.GetStudentByID(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Message("Not found"))
				return
			}
			slog.Error("error getting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, rec)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
// Returns every record as a JSON array, newest-created first.
// Returns an empty array [] (not null) when there are no records.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing student records")

		students, err := store.GetStudents()
		if err != nil {
			slog.Error("error listing students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Merge-updates an existing record: every field present in the payload
// overwrites the stored value, every absent field keeps it. Changing
// the roll is allowed as long as no OTHER record already holds it.
//
// Error responses:
//
//	400 Bad Request — empty body, malformed JSON, validation failure,
//	                  or the new roll belongs to another record
//	404 Not Found   — no record with that id
//	500 Internal    — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student record", slog.String("id", id))

		// The body is decoded twice — once for the conflict probe and
		// once over the stored record for the merge — so read it fully
		// up front.
		body, err := io.ReadAll(r.Body)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		if len(body) == 0 {
			response.WriteJSON(w, http.StatusBadRequest,
				response.Message("request body is empty"))
			return
		}

		var payload types.StudentRecord
		if err := json.Unmarshal(body, &payload); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		payload.Normalize()

		// Conflict check first: a roll that belongs to a DIFFERENT
		// record blocks the update. The record's own roll is excluded,
		// so a no-op roll in the payload is fine.
		if payload.Roll != "" {
			_, err := store.GetStudentByRollExcluding(payload.Roll, id)
			if err == nil {
				response.WriteJSON(w, http.StatusBadRequest,
					response.Message("Roll number conflict"))
				return
			}
			if !errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(err))
				return
			}
		}

		existing, err := store.GetStudentByID(id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound,
					response.Message("Not found"))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		// Merge: decoding the payload OVER the stored record keeps
		// every field the payload omits.
		if err := json.Unmarshal(body, &existing); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		existing.Normalize()

		if err := validate.Struct(existing); err != nil {
			validateErrs := err.(validator.ValidationErrors)
			response.WriteJSON(w, http.StatusBadRequest,
				response.ValidationError(validateErrs))
			return
		}

		updated, err := store.UpdateStudent(id, existing)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrRollExists):
				response.WriteJSON(w, http.StatusBadRequest,
					response.Message("Roll number conflict"))
			case errors.Is(err, storage.ErrNotFound):
				response.WriteJSON(w, http.StatusNotFound,
					response.Message("Not found"))
			default:
				slog.Error("error updating student",
					slog.String("id", id),
					slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError,
					response.GeneralError(err))
			}
			return
		}

		slog.Info("student record updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
// Permanently removes a record. Deleting an id that does not exist
// still reports success — delete is idempotent and the caller cannot
// tell the two cases apart.
//
// Success response (200 OK):
//
//	{ "message": "Deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student record", slog.String("id", id))

		if err := store.DeleteStudentByID(id); err != nil {
			slog.Error("error deleting student",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.Message("Deleted"))
	}
}
