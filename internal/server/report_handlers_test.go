package server

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"empleos/internal/export"
	"empleos/internal/models"
	"empleos/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGetReport(t *testing.T) {
	ts := newTestServer(t, false)
	_, adminToken := ts.userToken(t, models.UserTypeAdmin, "admin@example.cl")
	company := testutil.CreateCompany(t, ts.db, models.StatusActive)
	testutil.CreateJob(t, ts.db, company, models.StatusActive)
	testutil.CreateJob(t, ts.db, company, models.StatusPendingApproval)

	resp, body := ts.do(t, http.MethodGet, "/api/admin/reports/jobs", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "jobs", body["type"])
	assert.Equal(t, "day", body["group_by"])

	// The default window is the last 30 days, today included.
	trend := body["trend"].([]any)
	assert.Len(t, trend, 30)
	var total float64
	for _, p := range trend {
		total += p.(map[string]any)["count"].(float64)
	}
	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), total)
	assert.Equal(t, float64(2), summary["new_jobs"])

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"weekly window", "/api/admin/reports/users?group_by=week&from_date=2026-01-05&to_date=2026-01-25", http.StatusOK},
		{"bad group_by", "/api/admin/reports/users?group_by=year", http.StatusBadRequest},
		{"bad date", "/api/admin/reports/users?from_date=2026/01/01", http.StatusBadRequest},
		{"inverted window", "/api/admin/reports/users?from_date=2026-02-01&to_date=2026-01-01", http.StatusBadRequest},
		{"unknown report", "/api/admin/reports/posts", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(t, http.MethodGet, tt.path, adminToken, nil)
			assert.Equal(t, tt.status, resp.StatusCode, body)
		})
	}
}

func TestExportReport(t *testing.T) {
	ts := newTestServer(t, false)
	_, adminToken := ts.userToken(t, models.UserTypeAdmin, "admin@example.cl")

	resp, _ := ts.do(t, http.MethodGet,
		"/api/admin/reports/export/companies?from_date=2026-01-01&to_date=2026-01-07", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reporte_companies_2026-01-01_2026-01-07.xlsx"`,
		resp.Header.Get("Content-Disposition"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(export.SheetTrend)
	require.NoError(t, err)
	require.Len(t, rows, 8, "header plus one row per day")
	assert.Equal(t, []string{"Periodo", "Cantidad"}, rows[0])
	assert.Equal(t, "2026-01-01", rows[1][0])
	assert.Equal(t, "2026-01-07", rows[7][0])

	summary, err := f.GetRows(export.SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reporte", "companies"}, summary[0])
}

func TestReports_AdminOnly(t *testing.T) {
	ts := newTestServer(t, false)
	_, token := ts.seekerToken(t, "curiosa@example.cl")

	for _, path := range []string{"/api/admin/reports/users", "/api/admin/reports/export/users"} {
		resp, _ := ts.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
}
