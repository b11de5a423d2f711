// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite keeps everything in a single file on disk — no network, no
// separate server process — which matches how this portal is deployed.
//
// The roll-number uniqueness invariant lives HERE, as a UNIQUE index,
// not only in the handler-level pre-check. The pre-check exists for its
// friendlier error messages; the index is the backstop that makes two
// concurrent creates with the same roll impossible.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studentportal/internal/config"
	"studentportal/internal/storage"
	"studentportal/internal/types"

	"github.com/google/uuid"

	// Importing the driver registers "sqlite3" with database/sql; we
	// also use its error type to recognise UNIQUE violations.
	"github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id         TEXT    PRIMARY KEY,
		name       TEXT    NOT NULL,
		roll       TEXT    NOT NULL UNIQUE,
		dob        INTEGER NOT NULL,
		grade      TEXT    NOT NULL DEFAULT '',
		subjects   TEXT    NOT NULL DEFAULT '[]',
		marks      TEXT    NOT NULL DEFAULT '[]',
		total      TEXT    NOT NULL DEFAULT '',
		status     TEXT    NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)
`

// columns is the SELECT list shared by every query so Scan ordering
// stays in one place.
const columns = "id, name, roll, dob, grade, subjects, marks, total, status, created_at, updated_at"

// New opens the SQLite database at cfg.StoragePath, creates the
// students table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// isUniqueViolation reports whether err is the driver's UNIQUE
// constraint error — i.e. a second record tried to claim a roll.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// InsertStudent assigns the record's id and timestamps and writes it.
// Dates and timestamps are stored as unix milliseconds so the dob range
// query in FindByRollAndDOB is a plain integer comparison.
func (s *SQLite) InsertStudent(rec types.StudentRecord) (types.StudentRecord, error) {
	subjects, marks, err := encodeLists(rec)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("InsertStudent: %w", err)
	}

	now := time.Now()
	rec.ID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stmt, err := s.Db.Prepare(
		"INSERT INTO students (" + columns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("InsertStudent: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		rec.ID, rec.Name, rec.Roll, rec.DOB.UnixMilli(),
		rec.Grade, subjects, marks, rec.Total, rec.Status,
		now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.StudentRecord{}, fmt.Errorf("InsertStudent: %w", storage.ErrRollExists)
		}
		return types.StudentRecord{}, fmt.Errorf("InsertStudent: exec: %w", err)
	}

	// Re-fetch so the caller gets exactly what the database holds.
	return s.GetStudentByID(rec.ID)
}

func (s *SQLite) GetStudentByID(id string) (types.StudentRecord, error) {
	return s.getOne("SELECT "+columns+" FROM students WHERE id = ? LIMIT 1", id)
}

func (s *SQLite) GetStudentByRoll(roll string) (types.StudentRecord, error) {
	return s.getOne("SELECT "+columns+" FROM students WHERE roll = ? LIMIT 1", roll)
}

// GetStudentByRollExcluding is the update conflict probe: it looks for
// a DIFFERENT record already holding the roll.
func (s *SQLite) GetStudentByRollExcluding(roll, excludeID string) (types.StudentRecord, error) {
	return s.getOne(
		"SELECT "+columns+" FROM students WHERE roll = ? AND id != ? LIMIT 1",
		roll, excludeID,
	)
}

// UpdateStudent overwrites every mutable column and bumps updated_at.
// The id, created_at, and rowid never change.
func (s *SQLite) UpdateStudent(id string, rec types.StudentRecord) (types.StudentRecord, error) {
	subjects, marks, err := encodeLists(rec)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("UpdateStudent: %w", err)
	}

	stmt, err := s.Db.Prepare(`
		UPDATE students
		SET name = ?, roll = ?, dob = ?, grade = ?, subjects = ?,
		    marks = ?, total = ?, status = ?, updated_at = ?
		WHERE id = ?
	`)
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("UpdateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.Exec(
		rec.Name, rec.Roll, rec.DOB.UnixMilli(), rec.Grade,
		subjects, marks, rec.Total, rec.Status,
		time.Now().UnixMilli(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.StudentRecord{}, fmt.Errorf("UpdateStudent: %w", storage.ErrRollExists)
		}
		return types.StudentRecord{}, fmt.Errorf("UpdateStudent: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return types.StudentRecord{}, fmt.Errorf("UpdateStudent: rows affected: %w", err)
	}
	if affected == 0 {
		return types.StudentRecord{}, fmt.Errorf("UpdateStudent: id %s: %w", id, storage.ErrNotFound)
	}

	return s.GetStudentByID(id)
}

// DeleteStudentByID removes a record. Deleting an id that is already
// absent succeeds — delete is idempotent.
func (s *SQLite) DeleteStudentByID(id string) error {
	stmt, err := s.Db.Prepare("DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(id); err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	return nil
}

// GetStudents returns every record, newest-created first. rowid breaks
// ties between records created inside the same millisecond.
func (s *SQLite) GetStudents() ([]types.StudentRecord, error) {
	rows, err := s.Db.Query(
		"SELECT " + columns + " FROM students ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	students := make([]types.StudentRecord, 0)

	for rows.Next() {
		rec, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: %w", err)
		}
		students = append(students, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// FindByRollAndDOB matches the public search: roll plus a dob falling
// anywhere inside the [dayStart, dayEnd] bounds, inclusive.
func (s *SQLite) FindByRollAndDOB(roll string, dayStart, dayEnd time.Time) (types.StudentRecord, error) {
	return s.getOne(
		"SELECT "+columns+" FROM students WHERE roll = ? AND dob >= ? AND dob <= ? LIMIT 1",
		roll, dayStart.UnixMilli(), dayEnd.UnixMilli(),
	)
}

// getOne runs a single-row query and translates sql.ErrNoRows into the
// storage package's ErrNotFound sentinel.
func (s *SQLite) getOne(query string, args ...any) (types.StudentRecord, error) {
	rec, err := scanStudent(s.Db.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.StudentRecord{}, storage.ErrNotFound
		}
		return types.StudentRecord{}, fmt.Errorf("getOne: %w", err)
	}
	return rec, nil
}

// rowScanner lets scanStudent work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.StudentRecord, error) {
	var (
		rec              types.StudentRecord
		subjects, marks  string
		dobMs, createdMs int64
		updatedMs        int64
	)

	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Roll, &dobMs, &rec.Grade,
		&subjects, &marks, &rec.Total, &rec.Status,
		&createdMs, &updatedMs,
	)
	if err != nil {
		return types.StudentRecord{}, err
	}

	if err := json.Unmarshal([]byte(subjects), &rec.Subjects); err != nil {
		return types.StudentRecord{}, fmt.Errorf("decode subjects: %w", err)
	}
	if err := json.Unmarshal([]byte(marks), &rec.Marks); err != nil {
		return types.StudentRecord{}, fmt.Errorf("decode marks: %w", err)
	}

	rec.DOB = types.NewDate(time.UnixMilli(dobMs))
	rec.CreatedAt = time.UnixMilli(createdMs)
	rec.UpdatedAt = time.UnixMilli(updatedMs)

	return rec, nil
}

// encodeLists JSON-encodes the subjects/marks slices for their TEXT
// columns. nil encodes as [] so reads always produce a slice.
func encodeLists(rec types.StudentRecord) (subjects, marks string, err error) {
	if rec.Subjects == nil {
		rec.Subjects = []string{}
	}
	if rec.Marks == nil {
		rec.Marks = []string{}
	}

	sb, err := json.Marshal(rec.Subjects)
	if err != nil {
		return "", "", fmt.Errorf("encode subjects: %w", err)
	}
	mb, err := json.Marshal(rec.Marks)
	if err != nil {
		return "", "", fmt.Errorf("encode marks: %w", err)
	}
	return string(sb), string(mb), nil
}
