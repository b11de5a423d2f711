package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("plain date parses in local time", func(t *testing.T) {
		d, err := ParseDate("2008-04-12")
		require.NoError(t, err)

		y, m, day := d.Date()
		assert.Equal(t, 2008, y)
		assert.Equal(t, time.April, m)
		assert.Equal(t, 12, day)
		assert.Equal(t, time.Local, d.Location())
	})

	t.Run("RFC 3339 timestamp parses", func(t *testing.T) {
		d, err := ParseDate("2008-04-12T15:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, 15, d.Hour())
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseDate("12/04/2008")
		assert.Error(t, err)
	})
}

func TestDateJSON(t *testing.T) {
	t.Run("decodes a plain date inside a record", func(t *testing.T) {
		var rec StudentRecord
		err := json.Unmarshal(
			[]byte(`{"name":"A","roll":"R1","dob":"2000-01-01"}`), &rec)
		require.NoError(t, err)
		assert.Equal(t, 2000, rec.DOB.Year())
	})

	t.Run("empty string decodes to the zero date", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`""`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("non-string dob is a decode error", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`12`), &d))
	})

	t.Run("encodes as RFC 3339", func(t *testing.T) {
		d := NewDate(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
		out, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, `"2000-01-01T00:00:00Z"`, string(out))
	})
}

func TestDayBounds(t *testing.T) {
	d, err := ParseDate("2000-01-01")
	require.NoError(t, err)

	start, end := d.DayBounds()

	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Second())

	// A birth instant late in the evening still falls inside the day.
	evening := time.Date(2000, time.January, 1, 23, 59, 59, 0, time.Local)
	assert.False(t, evening.Before(start))
	assert.False(t, evening.After(end))

	// Midnight of the next day does not.
	midnight := time.Date(2000, time.January, 2, 0, 0, 0, 0, time.Local)
	assert.True(t, midnight.After(end))
}

func TestDayBoundsAcrossDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("fall-back day is 25 hours but still ends at 23:59:59.999", func(t *testing.T) {
		d := NewDate(time.Date(2024, time.November, 3, 0, 0, 0, 0, loc))
		start, end := d.DayBounds()

		assert.Equal(t, 3, end.Day())
		assert.Equal(t, 23, end.Hour())
		assert.Equal(t, 59, end.Minute())

		// A birth instant late on the transition day must fall inside
		// the window even though midnight+24h is only 23:00.
		evening := time.Date(2024, time.November, 3, 23, 30, 0, 0, loc)
		assert.False(t, evening.Before(start))
		assert.False(t, evening.After(end))
	})

	t.Run("spring-forward day does not spill into the next day", func(t *testing.T) {
		d := NewDate(time.Date(2024, time.March, 10, 0, 0, 0, 0, loc))
		_, end := d.DayBounds()

		assert.Equal(t, 10, end.Day())
		assert.Equal(t, 23, end.Hour())

		// Nothing from March 11 can match a March 10 lookup.
		nextMidnight := time.Date(2024, time.March, 11, 0, 0, 0, 0, loc)
		assert.True(t, end.Before(nextMidnight))
	})
}

func TestNormalize(t *testing.T) {
	rec := StudentRecord{
		Name:   "  Asha ",
		Roll:   " R1\t",
		Grade:  " 10A ",
		Total:  " 179 ",
		Status: " Pass ",
	}
	rec.Normalize()

	assert.Equal(t, "Asha", rec.Name)
	assert.Equal(t, "R1", rec.Roll)
	assert.Equal(t, "10A", rec.Grade)
	assert.Equal(t, "179", rec.Total)
	assert.Equal(t, "Pass", rec.Status)

	// Whitespace-only required fields must trim to empty.
	blank := StudentRecord{Name: "   ", Roll: "\t"}
	blank.Normalize()
	assert.Empty(t, blank.Name)
	assert.Empty(t, blank.Roll)
}
