package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"session_id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "abc", decodeBody(t, rec)["session_id"])
}

func TestQueued(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Queued(rec, "export")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, map[string]string{"status": "queued", "command": "export"}, decodeBody(t, rec))
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		msg    string
	}{
		{"method", MethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "limit must be between 1 and 1000") }, http.StatusBadRequest, "limit must be between 1 and 1000"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no points accumulated") }, http.StatusNotFound, "no points accumulated"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "disk full") }, http.StatusInternalServerError, "disk full"},
		{"unavailable", func(w http.ResponseWriter) { ServiceUnavailable(w, "export catalog not configured") }, http.StatusServiceUnavailable, "export catalog not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeBody(t, rec)["error"])
		})
	}
}
