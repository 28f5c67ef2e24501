package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sierravision/sierravision-api/internal/analysis"
	"github.com/sierravision/sierravision-api/internal/properties"
	"github.com/sierravision/sierravision-api/internal/satellite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, properties.Settings) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	settings := properties.Settings{
		DataDir:        t.TempDir(),
		FetchRetries:   1,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	analyzer := analysis.NewAnalyzer(settings, nil, nil)
	fires := satellite.NewFireService(settings)
	return NewServer(settings, analyzer, fires), settings
}

func TestListImages(t *testing.T) {
	server, settings := newTestServer(t)

	require.NoError(t, os.WriteFile(filepath.Join(settings.DataDir, "b_map.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(settings.DataDir, "a_report.json"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(settings.DataDir, "imagery"), 0755))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Images []string `json:"images"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"a_report.json", "b_map.png"}, body.Images, "sorted, directories excluded")
}

func TestListImagesEmptyDataDir(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"images":[]}`, rec.Body.String())
}

func TestCORSAllowedOrigin(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSUnknownOrigin(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.Header.Set("Origin", "https://evil.example")
	server.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestAnalyzeValidation(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing fields", body: `{}`},
		{name: "bad before date", body: `{"region":"sierra_madre","before_date":"yesterday","after_date":"2024-03-15"}`},
		{name: "bad after date", body: `{"region":"sierra_madre","before_date":"2020-03-15","after_date":"soon"}`},
		{name: "unknown mode", body: `{"region":"sierra_madre","before_date":"2020-03-15","after_date":"2024-03-15","mode":"spectral"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestFiresUnknownRegion(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/fires?region=atlantis", nil)
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFiresBadDate(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/fires?date=tomorrow", nil)
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
