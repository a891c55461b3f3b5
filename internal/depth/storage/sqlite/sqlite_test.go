package sqlite

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(openTestDB(t).DB)
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return c
}

func TestOpenMigratesToLatest(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// A second run finds nothing to do.
	require.NoError(t, db.MigrateUp())

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestCatalogLifecycle(t *testing.T) {
	c := newTestCatalog(t)

	rec := &ExportRecord{SessionID: "s1", Threshold: 0.5, TotalPoints: 3}
	require.NoError(t, c.Insert(rec))
	require.NotEmpty(t, rec.ExportID)
	assert.Equal(t, StatusRunning, rec.Status)

	got, err := c.Get(rec.ExportID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Zero(t, got.FinishedUnixNanos)

	require.NoError(t, c.Complete(rec.ExportID, "/tmp/pointcloud_1.xyz", 3, 2))
	got, err = c.Get(rec.ExportID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, "/tmp/pointcloud_1.xyz", got.Path)
	assert.Equal(t, 3, got.TotalPoints)
	assert.Equal(t, 2, got.WrittenPoints)
	assert.Greater(t, got.FinishedUnixNanos, got.StartedUnixNanos)
}

func TestCatalogFail(t *testing.T) {
	c := newTestCatalog(t)

	rec := &ExportRecord{SessionID: "s1", Threshold: 0.5}
	require.NoError(t, c.Insert(rec))
	require.NoError(t, c.Fail(rec.ExportID, errors.New("disk full")))

	got, err := c.Get(rec.ExportID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "disk full", got.Error)
	assert.Empty(t, got.Path)
}

func TestCatalogUnknownExport(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Complete("missing", "/x", 1, 1), ErrNotFound)
	assert.ErrorIs(t, c.Fail("missing", nil), ErrNotFound)
}

func TestCatalogListNewestFirst(t *testing.T) {
	c := newTestCatalog(t)

	var ids []string
	for _, session := range []string{"a", "b", "a", "a"} {
		rec := &ExportRecord{SessionID: session, Threshold: 0.5}
		require.NoError(t, c.Insert(rec))
		ids = append(ids, rec.ExportID)
	}

	all, err := c.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ExportID)
	assert.Equal(t, ids[0], all[3].ExportID)

	onlyA, err := c.List("a", 2)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, ids[3], onlyA[0].ExportID)
	assert.Equal(t, ids[2], onlyA[1].ExportID)

	counts, err := c.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, map[ExportStatus]int{StatusRunning: 4}, counts)
}

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"database is locked", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"SQLITE_BUSY", errors.New("SQLITE_BUSY"), true},
		{"other error", errors.New("some other error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSQLiteBusy(tt.err); got != tt.expected {
				t.Errorf("isSQLiteBusy(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	busy := errors.New("database is locked (5) (SQLITE_BUSY)")

	t.Run("success after retry", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			if calls < 3 {
				return busy
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		calls := 0
		other := errors.New("constraint failed")
		err := retryOnBusy(func() error {
			calls++
			return other
		})
		assert.Same(t, other, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		calls := 0
		err := retryOnBusy(func() error {
			calls++
			return busy
		})
		assert.Error(t, err)
		assert.Equal(t, busyMaxAttempts, calls)
	})
}

// loopbackRequest sets RemoteAddr so tsweb allows debug access.
func loopbackRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func TestAdminRoutesExportCatalog(t *testing.T) {
	db := openTestDB(t)
	c := NewCatalog(db.DB)
	rec := &ExportRecord{SessionID: "s1", Threshold: 0.5}
	require.NoError(t, c.Insert(rec))
	require.NoError(t, c.Complete(rec.ExportID, "/tmp/a.xyz", 1, 1))

	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, loopbackRequest(http.MethodGet, "/debug/export-catalog"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var counts map[ExportStatus]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&counts))
	assert.Equal(t, 1, counts[StatusComplete])
}
