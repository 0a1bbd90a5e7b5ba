package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"empleos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMyProfile(t *testing.T) {
	ts := newTestServer(t, false)
	_, token := ts.seekerToken(t, "ana@example.cl")

	resp, body := ts.do(t, http.MethodPut, "/api/me/profile", token, map[string]any{
		"rut":      "12.345.678-5",
		"city":     "Valparaíso",
		"headline": "Analista de datos",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "12345678-5", body["rut"])
	assert.Equal(t, "Ana", body["first_name"], "omitted fields are kept")

	resp, body = ts.do(t, http.MethodGet, "/api/me/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Valparaíso", body["city"])

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty first name", map[string]any{"first_name": " "}},
		{"invalid rut", map[string]any{"rut": "12.345.678-9"}},
		{"future birth date", map[string]any{"birth_date": "2999-01-01T00:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(t, http.MethodPut, "/api/me/profile", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		})
	}

	_, companyTok := ts.companyToken(t, models.StatusActive)
	resp, _ = ts.do(t, http.MethodGet, "/api/me/profile", companyTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func listItems(t *testing.T, ts *testServer, path, token string) []map[string]any {
	t.Helper()
	resp, _ := ts.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func TestEducationItems(t *testing.T) {
	ts := newTestServer(t, false)
	_, token := ts.seekerToken(t, "ana@example.cl")
	_, otherTok := ts.seekerToken(t, "bruno@example.cl")

	resp, body := ts.do(t, http.MethodPost, "/api/me/education", token, map[string]any{
		"institution": "Universidad de Chile",
		"degree":      "Ingeniería Comercial",
		"start_date":  "2015-03-01T00:00:00Z",
		"end_date":    "2019-12-20T00:00:00Z",
		"user_id":     999,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	id := uint(body["id"].(float64))
	assert.NotEqual(t, float64(999), body["user_id"], "owner comes from the token")

	items := listItems(t, ts, "/api/me/education", token)
	require.Len(t, items, 1)
	assert.Empty(t, listItems(t, ts, "/api/me/education", otherTok))

	path := fmt.Sprintf("/api/me/education/%d", id)
	resp, body = ts.do(t, http.MethodPut, path, token, map[string]any{
		"institution": "Universidad de Chile",
		"degree":      "Magíster en Finanzas",
		"current":     true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Magíster en Finanzas", body["degree"])

	// Entries of other users look missing.
	resp, _ = ts.do(t, http.MethodPut, path, otherTok, map[string]any{"institution": "X", "degree": "Y"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodDelete, path, otherTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, listItems(t, ts, "/api/me/education", token))
}

func TestProfileItems_Validation(t *testing.T) {
	ts := newTestServer(t, false)
	_, token := ts.seekerToken(t, "ana@example.cl")

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"education without degree", "/api/me/education", map[string]any{"institution": "Duoc UC"}},
		{"end before start", "/api/me/education", map[string]any{
			"institution": "Duoc UC", "degree": "Técnico",
			"start_date": "2020-03-01T00:00:00Z", "end_date": "2019-03-01T00:00:00Z",
		}},
		{"current with end date", "/api/me/education", map[string]any{
			"institution": "Duoc UC", "degree": "Técnico", "current": true,
			"end_date": "2019-03-01T00:00:00Z",
		}},
		{"skill without name", "/api/me/skills", map[string]any{"level": "avanzado"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := ts.do(t, http.MethodPost, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		})
	}
}

func TestCompanyProfile(t *testing.T) {
	ts := newTestServer(t, false)
	company, token := ts.companyToken(t, models.StatusActive)

	resp, body := ts.do(t, http.MethodPut, "/api/me/company/profile", token, map[string]any{
		"description": "Retail con foco en inclusión laboral",
		"city":        "Santiago",
		"rut":         "11.111.111-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Santiago", body["city"])
	assert.Equal(t, company.RUT, body["rut"], "rut is fixed after registration")

	resp, body = ts.do(t, http.MethodGet, "/api/me/company/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Retail con foco en inclusión laboral", body["description"])
}
