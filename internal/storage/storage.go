// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers (HTTP layer) depend only on this interface, never on a
// concrete database. Switching backends means implementing the
// interface for the new engine and changing one line in main.go.
package storage

import (
	"errors"
	"time"

	"studentportal/internal/types"
)

// Sentinel errors returned by Storage implementations. Handlers match
// on these with errors.Is to choose an HTTP status, so implementations
// must wrap (not replace) them when adding context.
var (
	// ErrNotFound means no record matched the id or search criteria.
	ErrNotFound = errors.New("student not found")

	// ErrRollExists means the roll-number uniqueness invariant would
	// be violated. It is produced both by the pre-insert check and by
	// the database's own UNIQUE index, so a conflicting write that
	// slips past the check still surfaces as this error.
	ErrRollExists = errors.New("roll number must be unique")
)

// Storage is the database contract for student records.
type Storage interface {
	// InsertStudent stores a new record, assigning its ID and the
	// createdAt/updatedAt timestamps. Returns the stored record, or
	// ErrRollExists when the roll number is already taken.
	InsertStudent(rec types.StudentRecord) (types.StudentRecord, error)

	// GetStudentByID fetches one record by its store-assigned ID.
	// Returns ErrNotFound when absent.
	GetStudentByID(id string) (types.StudentRecord, error)

	// GetStudentByRoll fetches one record by roll number.
	// Returns ErrNotFound when absent.
	GetStudentByRoll(roll string) (types.StudentRecord, error)

	// GetStudentByRollExcluding is the update conflict probe: it finds
	// a record with the given roll whose ID differs from excludeID.
	// Returns ErrNotFound when no other record holds the roll.
	GetStudentByRollExcluding(roll, excludeID string) (types.StudentRecord, error)

	// UpdateStudent overwrites every mutable field of the record at
	// id and bumps updatedAt. Returns the record as stored, or
	// ErrNotFound when the id does not exist. A roll collision with
	// another record surfaces as ErrRollExists.
	UpdateStudent(id string, rec types.StudentRecord) (types.StudentRecord, error)

	// DeleteStudentByID removes a record. Deleting an absent id is
	// not an error — delete is idempotent.
	DeleteStudentByID(id string) error

	// GetStudents returns every record, newest-created first.
	// Returns an empty slice (not nil) when there are no records.
	GetStudents() ([]types.StudentRecord, error)

	// FindByRollAndDOB returns the record with the given roll whose
	// date of birth lies within [dayStart, dayEnd] inclusive.
	// Returns ErrNotFound when nothing matches.
	FindByRollAndDOB(roll string, dayStart, dayEnd time.Time) (types.StudentRecord, error)
}
