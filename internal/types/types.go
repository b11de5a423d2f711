// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StudentRecord is one student's result entry.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (lowercase names match REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty.
//
// Subjects and Marks are positionally paired: index i of each slice is
// one subject/mark pair. Marks and Total are free-form text, not numbers
// — the portal renders them verbatim and never does arithmetic on them.
type StudentRecord struct {
	// ID is assigned by the store at insert time and never changes.
	ID string `json:"id"`

	Name string `json:"name" validate:"required"`

	// Roll is the student's roll number — unique across all records,
	// and distinct from the store-assigned ID.
	Roll string `json:"roll" validate:"required"`

	DOB Date `json:"dob" validate:"required"`

	Grade    string   `json:"grade"`
	Subjects []string `json:"subjects"`
	Marks    []string `json:"marks"`
	Total    string   `json:"total"`
	Status   string   `json:"status"`

	// Maintained by the store; ignored on input.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims the free-text fields so that whitespace-only input
// fails the "required" checks instead of slipping through.
func (s *StudentRecord) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Roll = strings.TrimSpace(s.Roll)
	s.Grade = strings.TrimSpace(s.Grade)
	s.Total = strings.TrimSpace(s.Total)
	s.Status = strings.TrimSpace(s.Status)
}

// dateLayout is the day-precision input format the portal accepts,
// e.g. "2000-01-31".
const dateLayout = "2006-01-02"

// Date is a day-precision date of birth. It wraps time.Time so the rest
// of the code can use the normal time API, but its JSON codec accepts
// both plain "2006-01-02" dates (parsed in local time, matching how the
// portal's date inputs behave) and full RFC 3339 timestamps.
type Date struct {
	time.Time
}

// NewDate wraps an instant as a Date.
func NewDate(t time.Time) Date { return Date{t} }

// ParseDate parses either a plain date or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return Date{t}, nil
}

// UnmarshalJSON accepts a JSON string in either supported format.
// An empty string decodes to the zero Date so that "required"
// validation reports the missing field instead of a decode error.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dob must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON always emits RFC 3339 so clients get an unambiguous
// instant back regardless of which input form was stored.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// DayBounds returns the first and last instant of the Date's calendar
// day in the Date's own location: [00:00:00.000, 23:59:59.999].
// The search endpoint matches any stored instant inside these bounds.
//
// Both bounds are built from calendar components, not by adding 24h to
// midnight — a DST-transition day is 23 or 25 hours long, and the end
// of the day is 23:59:59.999 regardless.
func (d Date) DayBounds() (start, end time.Time) {
	y, m, day := d.Date()
	start = time.Date(y, m, day, 0, 0, 0, 0, d.Location())
	end = time.Date(y, m, day, 23, 59, 59, 999_000_000, d.Location())
	return start, end
}
