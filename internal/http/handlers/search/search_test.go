package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studentportal/internal/config"
	"studentportal/internal/storage"
	"studentportal/internal/storage/sqlite"
	"studentportal/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.HandlerFunc, storage.Storage) {
	t.Helper()

	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "test.db")}
	store, err := sqlite.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Db.Close() })

	return New(store), store
}

func post(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
	handler(rr, req)
	return rr
}

func TestSearch(t *testing.T) {
	handler, store := newTestHandler(t)

	// One record, born mid-afternoon so the day-bounds matching is
	// actually exercised rather than matching midnight-to-midnight.
	born := time.Date(2008, time.April, 12, 15, 30, 0, 0, time.Local)
	created, err := store.InsertStudent(types.StudentRecord{
		Name: "Asha Verma",
		Roll: "R101",
		DOB:  types.NewDate(born),
	})
	require.NoError(t, err)

	t.Run("roll plus matching day returns the record", func(t *testing.T) {
		rr := post(handler, `{"roll":"R101","dob":"2008-04-12"}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var rec types.StudentRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
		assert.Equal(t, created.ID, rec.ID)
	})

	t.Run("the day after the birthday misses", func(t *testing.T) {
		rr := post(handler, `{"roll":"R101","dob":"2008-04-13"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Not found"}`, rr.Body.String())
	})

	t.Run("right day, wrong roll misses", func(t *testing.T) {
		rr := post(handler, `{"roll":"R999","dob":"2008-04-12"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing roll is 400", func(t *testing.T) {
		rr := post(handler, `{"dob":"2008-04-12"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"message":"roll and dob required"}`, rr.Body.String())
	})

	t.Run("missing dob is 400", func(t *testing.T) {
		rr := post(handler, `{"roll":"R101"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty body is 400", func(t *testing.T) {
		rr := post(handler, ``)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unparsable dob is 400", func(t *testing.T) {
		rr := post(handler, `{"roll":"R101","dob":"12/04/2008"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
