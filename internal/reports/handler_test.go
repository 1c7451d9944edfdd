package reports_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timeclock-backend/internal/auth"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"
	"timeclock-backend/internal/server"
	"timeclock-backend/internal/testsupport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportEndpoint(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())

	manager := testsupport.CreateUser(t, "Meg", "meg@example.com", models.RoleManager)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)
	site := testsupport.CreatePerimeter(t, "Main Site", 0, 0, 100, manager.ID)

	start := time.Now().Add(-26 * time.Hour)
	end := start.Add(4 * time.Hour)
	require.NoError(t, database.DB.Create(&models.ClockRecord{
		UserID:              worker.ID,
		LocationPerimeterID: site.ID,
		ClockInTime:         start,
		ClockOutTime:        &end,
	}).Error)

	token, err := auth.GenerateToken(testsupport.Config().JWTSecret, manager)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/reports?timeRange=week", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 4.0, report["totalHours"])
	assert.Equal(t, 1.0, report["totalStaff"])
	assert.Equal(t, 0.0, report["currentlyActive"])

	staffHours := report["staffHours"].([]any)
	require.Len(t, staffHours, 1)
	assert.Equal(t, "Walt", staffHours[0].(map[string]any)["name"])

	locations := report["locationDistribution"].([]any)
	require.Len(t, locations, 1)
	assert.Equal(t, "Main Site", locations[0].(map[string]any)["name"])
}

func TestReportRejectsBadTimeRange(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())
	manager := testsupport.CreateUser(t, "Meg", "meg@example.com", models.RoleManager)

	token, err := auth.GenerateToken(testsupport.Config().JWTSecret, manager)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/reports?timeRange=year", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "timeRange must be one of: week, month, all", body["error"])
}

func TestExportEndpointReturnsWorkbook(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())
	manager := testsupport.CreateUser(t, "Meg", "meg@example.com", models.RoleManager)

	token, err := auth.GenerateToken(testsupport.Config().JWTSecret, manager)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/export?timeRange=all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"))
	assert.Equal(t,
		`attachment; filename="timeclock-report-all.xlsx"`,
		resp.Header.Get("Content-Disposition"))
}

func TestReportIsManagerOnly(t *testing.T) {
	testsupport.SetupDB(t)
	app := server.New(testsupport.Config())
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)

	token, err := auth.GenerateToken(testsupport.Config().JWTSecret, worker)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
