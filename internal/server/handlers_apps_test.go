package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/interntrack/internal/export"
	"github.com/jonathan/interntrack/internal/tracker"
	"github.com/jonathan/interntrack/internal/types"
)

func createApp(t *testing.T, h http.Handler, token string, body map[string]string) tracker.Application {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/apps", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var app tracker.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	return app
}

func listApps(t *testing.T, h http.Handler, token string) []tracker.Application {
	t.Helper()
	w := doJSON(t, h, http.MethodGet, "/api/apps", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var apps []tracker.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apps))
	return apps
}

func TestApplications_CreateAndList(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	token, user := signup(t, h, "ada@example.com")

	assert.Empty(t, listApps(t, h, token))

	app := createApp(t, h, token, map[string]string{
		"company":  "Acme",
		"role":     "Backend Intern",
		"location": "Remote",
	})
	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.Equal(t, user.ID, app.UserID)
	assert.Equal(t, tracker.StatusApplied, app.Status, "status defaults to Applied")
	assert.False(t, app.CreatedAt.IsZero())

	second := createApp(t, h, token, map[string]string{
		"company": "Globex",
		"role":    "SRE Intern",
		"status":  "Interview",
	})

	apps := listApps(t, h, token)
	require.Len(t, apps, 2)
	assert.Equal(t, second.ID, apps[0].ID, "most recently updated first")
	assert.Equal(t, app.ID, apps[1].ID)
}

func TestApplications_CreateValidation(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	token, _ := signup(t, h, "ada@example.com")

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing company", map[string]string{"role": "Intern"}, "Company"},
		{"missing role", map[string]string{"company": "Acme"}, "Role"},
		{"company too long", map[string]string{"company": strings.Repeat("a", 121), "role": "Intern"}, "Company"},
		{"unknown status", map[string]string{"company": "Acme", "role": "Intern", "status": "Pending"}, "Status"},
		{"url too long", map[string]string{"company": "Acme", "role": "Intern", "url": strings.Repeat("u", 401)}, "URL"},
		{"notes too long", map[string]string{"company": "Acme", "role": "Intern", "notes": strings.Repeat("n", 5001)}, "Notes"},
		{"applied date too long", map[string]string{"company": "Acme", "role": "Intern", "applied_date": strings.Repeat("d", 41)}, "AppliedDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/api/apps", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.field)
		})
	}

	assert.Empty(t, listApps(t, h, token))
}

func TestApplications_Update(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	token, _ := signup(t, h, "ada@example.com")

	app := createApp(t, h, token, map[string]string{
		"company": "Acme",
		"role":    "Backend Intern",
		"notes":   "referral from Bob",
	})

	w := doJSON(t, h, http.MethodPut, "/api/apps/"+app.ID.String(), token, map[string]string{
		"status": "Offer",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated tracker.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, tracker.StatusOffer, updated.Status)
	assert.Equal(t, "Acme", updated.Company, "unsupplied fields are kept")
	assert.Equal(t, "referral from Bob", updated.Notes)
	assert.False(t, updated.UpdatedAt.Before(app.UpdatedAt))

	t.Run("empty string clears a field", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/api/apps/"+app.ID.String(), token, map[string]string{"notes": ""})
		require.Equal(t, http.StatusOK, w.Code)
		var cleared tracker.Application
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cleared))
		assert.Empty(t, cleared.Notes)
	})

	t.Run("invalid status", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/api/apps/"+app.ID.String(), token, map[string]string{"status": "Maybe"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank company", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/api/apps/"+app.ID.String(), token, map[string]string{"company": ""})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/api/apps/"+uuid.NewString(), token, map[string]string{"status": "Offer"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not found", decodeError(t, w))
	})

	t.Run("malformed id", func(t *testing.T) {
		w := doJSON(t, h, http.MethodPut, "/api/apps/42", token, map[string]string{"status": "Offer"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestApplications_Delete(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	token, _ := signup(t, h, "ada@example.com")
	app := createApp(t, h, token, map[string]string{"company": "Acme", "role": "Intern"})

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"existing", app.ID.String(), true},
		{"already deleted", app.ID.String(), false},
		{"malformed id", "not-a-uuid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodDelete, "/api/apps/"+tt.id, token, nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp types.DeleteResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Deleted)
		})
	}

	assert.Empty(t, listApps(t, h, token))
}

func TestApplications_Ownership(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	owner, _ := signup(t, h, "owner@example.com")
	other, _ := signup(t, h, "other@example.com")

	app := createApp(t, h, owner, map[string]string{"company": "Acme", "role": "Intern"})

	assert.Empty(t, listApps(t, h, other))

	w := doJSON(t, h, http.MethodPut, "/api/apps/"+app.ID.String(), other, map[string]string{"status": "Rejected"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/api/apps/"+app.ID.String(), other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":false}`, w.Body.String())

	apps := listApps(t, h, owner)
	require.Len(t, apps, 1)
	assert.Equal(t, tracker.StatusApplied, apps[0].Status)
}

func TestApplications_Stats(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	token, _ := signup(t, h, "ada@example.com")

	for _, status := range []string{"Applied", "Applied", "Interview", "Offer"} {
		createApp(t, h, token, map[string]string{"company": "Acme", "role": "Intern", "status": status})
	}

	w := doJSON(t, h, http.MethodGet, "/api/apps/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats tracker.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Counts[tracker.StatusApplied])
	assert.Equal(t, 50, stats.Percent[tracker.StatusApplied])
	assert.Equal(t, 25, stats.Percent[tracker.StatusOffer])
	assert.Equal(t, 0, stats.Counts[tracker.StatusGhosted])
	assert.Equal(t, 4, stats.Last7)
	assert.Equal(t, 4, stats.Last30)
	assert.Len(t, stats.Newest, 4)

	t.Run("relative to server clock", func(t *testing.T) {
		s.appService.now = func() time.Time { return time.Now().Add(10 * 24 * time.Hour) }
		defer func() { s.appService.now = time.Now }()

		w := doJSON(t, h, http.MethodGet, "/api/apps/stats", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var later tracker.Stats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &later))
		assert.Equal(t, 0, later.Last7)
		assert.Equal(t, 4, later.Last30)
	})
}

func TestApplications_ExportXLSX(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()
	token, _ := signup(t, h, "ada@example.com")
	createApp(t, h, token, map[string]string{"company": "Acme", "role": "Backend Intern", "status": "Interview"})
	createApp(t, h, token, map[string]string{"company": "Globex", "role": "SRE Intern"})

	w := doJSON(t, h, http.MethodGet, "/api/apps/export.xlsx", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "applications.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per application")
	assert.Equal(t, export.ApplicationHeaders[0], rows[0][0])

	companies := []string{rows[1][0], rows[2][0]}
	assert.ElementsMatch(t, []string{"Acme", "Globex"}, companies)
}
