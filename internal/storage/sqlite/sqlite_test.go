package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"studentportal/internal/config"
	"studentportal/internal/storage"
	"studentportal/internal/types"

	"github.com/stretchr/testify/suite"
)

type SQLiteStoreSuite struct {
	suite.Suite
	store *SQLite
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreSuite))
}

func (s *SQLiteStoreSuite) SetupTest() {
	cfg := &config.Config{
		StoragePath: filepath.Join(s.T().TempDir(), "test.db"),
	}
	store, err := New(cfg)
	s.Require().NoError(err)
	s.store = store
}

func (s *SQLiteStoreSuite) TearDownTest() {
	s.NoError(s.store.Db.Close())
}

// sample returns a valid record with the given roll and a dob at an
// arbitrary time of day, so the day-bounds query has something to clip.
func sample(roll string) types.StudentRecord {
	dob := time.Date(2008, time.April, 12, 15, 30, 0, 0, time.Local)
	return types.StudentRecord{
		Name:     "Asha Verma",
		Roll:     roll,
		DOB:      types.NewDate(dob),
		Grade:    "10A",
		Subjects: []string{"Maths", "Science"},
		Marks:    []string{"91", "88"},
		Total:    "179",
		Status:   "Pass",
	}
}

func (s *SQLiteStoreSuite) TestInsertStudent() {
	s.Run("assigns id and timestamps", func() {
		created, err := s.store.InsertStudent(sample("R101"))
		s.Require().NoError(err)

		s.NotEmpty(created.ID)
		s.Equal("R101", created.Roll)
		s.Equal([]string{"Maths", "Science"}, created.Subjects)
		s.Equal([]string{"91", "88"}, created.Marks)
		s.False(created.CreatedAt.IsZero())
		s.Equal(created.CreatedAt, created.UpdatedAt)
	})

	s.Run("duplicate roll is rejected by the unique index", func() {
		_, err := s.store.InsertStudent(sample("R102"))
		s.Require().NoError(err)

		_, err = s.store.InsertStudent(sample("R102"))
		s.ErrorIs(err, storage.ErrRollExists)
	})

	s.Run("nil subject and mark slices come back as empty slices", func() {
		rec := sample("R103")
		rec.Subjects = nil
		rec.Marks = nil

		created, err := s.store.InsertStudent(rec)
		s.Require().NoError(err)
		s.NotNil(created.Subjects)
		s.NotNil(created.Marks)
		s.Empty(created.Subjects)
	})
}

func (s *SQLiteStoreSuite) TestGetStudentByID() {
	created, err := s.store.InsertStudent(sample("R101"))
	s.Require().NoError(err)

	s.Run("existing id round-trips every field", func() {
		got, err := s.store.GetStudentByID(created.ID)
		s.Require().NoError(err)
		s.Equal(created, got)
	})

	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.GetStudentByID("no-such-id")
		s.ErrorIs(err, storage.ErrNotFound)
	})
}

func (s *SQLiteStoreSuite) TestGetStudentByRoll() {
	created, err := s.store.InsertStudent(sample("R101"))
	s.Require().NoError(err)

	got, err := s.store.GetStudentByRoll("R101")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)

	_, err = s.store.GetStudentByRoll("R999")
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *SQLiteStoreSuite) TestGetStudentByRollExcluding() {
	created, err := s.store.InsertStudent(sample("R101"))
	s.Require().NoError(err)

	s.Run("own id is excluded", func() {
		_, err := s.store.GetStudentByRollExcluding("R101", created.ID)
		s.ErrorIs(err, storage.ErrNotFound)
	})

	s.Run("another record holding the roll is found", func() {
		got, err := s.store.GetStudentByRollExcluding("R101", "some-other-id")
		s.Require().NoError(err)
		s.Equal(created.ID, got.ID)
	})
}

func (s *SQLiteStoreSuite) TestUpdateStudent() {
	created, err := s.store.InsertStudent(sample("R101"))
	s.Require().NoError(err)

	s.Run("overwrites fields and bumps updatedAt", func() {
		changed := created
		changed.Name = "Asha V."
		changed.Marks = []string{"95", "90"}

		// updated_at is millisecond precision; make sure it can move.
		time.Sleep(5 * time.Millisecond)

		updated, err := s.store.UpdateStudent(created.ID, changed)
		s.Require().NoError(err)
		s.Equal("Asha V.", updated.Name)
		s.Equal([]string{"95", "90"}, updated.Marks)
		s.Equal(created.CreatedAt, updated.CreatedAt)
		s.True(updated.UpdatedAt.After(created.UpdatedAt))
	})

	s.Run("keeping the same roll is not a conflict", func() {
		_, err := s.store.UpdateStudent(created.ID, created)
		s.NoError(err)
	})

	s.Run("taking another record's roll is rejected", func() {
		other, err := s.store.InsertStudent(sample("R102"))
		s.Require().NoError(err)

		grab := other
		grab.Roll = "R101"
		_, err = s.store.UpdateStudent(other.ID, grab)
		s.ErrorIs(err, storage.ErrRollExists)
	})

	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.UpdateStudent("no-such-id", sample("R103"))
		s.ErrorIs(err, storage.ErrNotFound)
	})
}

func (s *SQLiteStoreSuite) TestDeleteStudentByID() {
	created, err := s.store.InsertStudent(sample("R101"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteStudentByID(created.ID))

	_, err = s.store.GetStudentByID(created.ID)
	s.ErrorIs(err, storage.ErrNotFound)

	// Deleting again is not an error: delete is idempotent.
	s.NoError(s.store.DeleteStudentByID(created.ID))
}

func (s *SQLiteStoreSuite) TestGetStudents() {
	s.Run("empty table yields an empty slice, not nil", func() {
		students, err := s.store.GetStudents()
		s.Require().NoError(err)
		s.NotNil(students)
		s.Empty(students)
	})

	s.Run("records come back newest-created first", func() {
		for _, roll := range []string{"R101", "R102", "R103"} {
			_, err := s.store.InsertStudent(sample(roll))
			s.Require().NoError(err)
		}

		students, err := s.store.GetStudents()
		s.Require().NoError(err)
		s.Require().Len(students, 3)
		s.Equal("R103", students[0].Roll)
		s.Equal("R102", students[1].Roll)
		s.Equal("R101", students[2].Roll)
	})
}

func (s *SQLiteStoreSuite) TestFindByRollAndDOB() {
	// dob is stored at 15:30 on 2008-04-12 (see sample).
	created, err := s.store.InsertStudent(sample("R101"))
	s.Require().NoError(err)

	day := types.NewDate(time.Date(2008, time.April, 12, 0, 0, 0, 0, time.Local))

	s.Run("any instant inside the calendar day matches", func() {
		start, end := day.DayBounds()
		got, err := s.store.FindByRollAndDOB("R101", start, end)
		s.Require().NoError(err)
		s.Equal(created.ID, got.ID)
	})

	s.Run("the neighbouring day does not match", func() {
		nextDay := types.NewDate(day.AddDate(0, 0, 1))
		start, end := nextDay.DayBounds()
		_, err := s.store.FindByRollAndDOB("R101", start, end)
		s.ErrorIs(err, storage.ErrNotFound)
	})

	s.Run("right roll, wrong day and vice versa both miss", func() {
		start, end := day.DayBounds()
		_, err := s.store.FindByRollAndDOB("R999", start, end)
		s.ErrorIs(err, storage.ErrNotFound)
	})
}
