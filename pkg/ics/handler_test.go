package ics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ImportAndExport(t *testing.T) {
	// given
	service, _ := setupServiceTest(t)
	handler := NewHandler(service)
	body := strings.ReplaceAll("BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//test//test//EN\n"+weeklyYoga+"END:VCALENDAR\n", "\n", "\r\n")

	// when
	rr := httptest.NewRecorder()
	handler.ImportICS(rr, httptest.NewRequest(http.MethodPost, "/api/import/ics", strings.NewReader(body)).WithContext(ctx))

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var result ImportResultDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
	assert.Equal(t, 4, result.Added)

	// when
	rr = httptest.NewRecorder()
	handler.ExportICS(rr, httptest.NewRequest(http.MethodGet, "/api/export/ics?from=2025-06-01T00:00:00Z&to=2025-06-07T00:00:00Z", nil).WithContext(ctx))

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rr.Body.String(), "UID:yoga-20250602T180000Z")
	assert.NotContains(t, rr.Body.String(), "UID:dentist")
}

func TestHandler_BadInput(t *testing.T) {
	service, _ := setupServiceTest(t)
	handler := NewHandler(service)

	t.Run("invalid window", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ExportICS(rr, httptest.NewRequest(http.MethodGet, "/api/export/ics?from=june", nil).WithContext(ctx))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid replace flag", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ImportICS(rr, httptest.NewRequest(http.MethodPost, "/api/import/ics?replace=maybe", strings.NewReader("")).WithContext(ctx))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ExportICS(rr, httptest.NewRequest(http.MethodGet, "/api/export/ics", nil))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
