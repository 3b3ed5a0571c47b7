package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/config"
)

const odooHost = "http://odoo.test"

func testConfig() *config.Config {
	return &config.Config{
		Env:       "test",
		APIPrefix: "/api/v1",
		Odoo:      config.OdooConfig{Host: odooHost, Database: "school", HealthTimeout: time.Second, RequestTimeout: time.Second},
		Session:   config.SessionConfig{MaxAge: time.Hour, NearExpiry: 10 * time.Minute},
		Cache:     config.CacheConfig{Driver: config.CacheDriverMemory, DefaultTTL: time.Minute, MaxEntries: 100},
		Sync: config.SyncConfig{
			Debounce:           10 * time.Millisecond,
			MinQueryLength:     3,
			StudentPageSize:    5,
			YearPageSize:       8,
			AttendancePageSize: 20,
			GlobalSearchLimit:  50,
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func rpcResult(result string) httpmock.Responder {
	return httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":`+result+`}`)
}

// callKW answers search_count with 1, school.year search_read with one row
// and everything else with an empty list.
func callKW(t *testing.T) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		var body struct {
			Params struct {
				Model  string `json:"model"`
				Method string `json:"method"`
			} `json:"params"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		result := `[]`
		switch {
		case body.Params.Method == "search_count":
			result = `1`
		case body.Params.Model == "school.year" && body.Params.Method == "search_read":
			result = `[{"id":4,"name":"2024-2025","current":true,"evalution_type_secundary":false,"evalution_type_primary":false,"evalution_type_pree":false,"total_students_count":10,"approved_students_count":7,"total_sections_count":2,"total_professors_count":3}]`
		}
		return httpmock.NewStringResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":`+result+`}`), nil
	}
}

func setupApp(t *testing.T) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, a.Router()
}

func registerOnlineServer(t *testing.T) {
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/database/list", rpcResult(`["school"]`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/session/authenticate",
		rpcResult(`{"uid":2,"name":"Admin","username":"admin","login":"admin@school.test","role":"admin","session_id":"sid-9"}`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/session/get_session_info",
		rpcResult(`{"uid":2,"name":"Administrator","username":"admin","db":"school"}`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/session/destroy", rpcResult(`true`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/dataset/call_kw", callKW(t))
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNewRejectsUnknownCacheDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Driver = "memcached"
	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached")
}

func TestHealthAndReadiness(t *testing.T) {
	_, r := setupApp(t)

	rec := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/database/list",
		httpmock.NewErrorResponder(errors.New("connection refused")))
	rec = do(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "odoo_unreachable")

	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/database/list", rpcResult(`["school"]`))
	rec = do(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListsRequireSession(t *testing.T) {
	_, r := setupApp(t)

	rec := do(r, http.MethodGet, "/api/v1/school_years", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThenBrowseSchoolYears(t *testing.T) {
	a, r := setupApp(t)
	registerOnlineServer(t)

	rec := do(r, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "sid-9", a.Odoo.SessionID())

	rec = do(r, http.MethodGet, "/api/v1/school_years", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Items []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"items"`
			Total         int  `json:"total"`
			IsOfflineMode bool `json:"is_offline_mode"`
		} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Items, 1)
	assert.Equal(t, "2024-2025", env.Data.Items[0].Name)
	assert.False(t, env.Data.IsOfflineMode)

	rec = do(r, http.MethodGet, "/api/v1/school_years/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "school_years")
	assert.Contains(t, rec.Body.String(), "2024-2025")

	rec = do(r, http.MethodGet, "/api/v1/enrolled_sections", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(r, http.MethodGet, "/api/v1/school_years", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWarmupLoadsEveryList(t *testing.T) {
	a, _ := setupApp(t)
	registerOnlineServer(t)

	_, err := a.Sessions.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, a.StartWarmup(context.Background()))
	require.Eventually(t, func() bool {
		l, ok := a.Lists.Get("school_years")
		require.True(t, ok)
		return len(l.Export().Rows) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
