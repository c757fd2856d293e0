package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom-backend/internal/config"
	"newsroom-backend/pkg/container"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func (a apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func (a apiClient) login(email, password string) string {
	a.t.Helper()

	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func newTestAPI(t *testing.T) apiClient {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App: config.AppConfig{Name: "newsroom-test", Environment: "test", Version: "test", Storage: config.StorageMemory},
		JWT: config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiry: 60},
		Views: config.ViewsConfig{
			SessionTTL:     time.Hour,
			FlushInterval:  time.Hour,
			PublicCacheTTL: time.Minute,
		},
		Seed: config.SeedConfig{Email: "chief@newsroom.test", Password: "chief-pass2024", FullName: "Chief"},
	}

	c, err := container.NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	return apiClient{t: t, router: SetupRouter(c)}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestEditorialPipelineOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	chief := api.login("chief@newsroom.test", "chief-pass2024")

	for _, u := range []gin.H{
		{"email": "reporter@newsroom.test", "password": "reporter-pass1", "full_name": "Reporter", "role": "wartawan"},
		{"email": "desk@newsroom.test", "password": "desk-pass2024", "full_name": "Desk", "role": "editor"},
	} {
		code, _ := api.do(http.MethodPost, "/api/v1/admin/users", chief, u)
		require.Equal(t, http.StatusCreated, code)
	}

	reporter := api.login("reporter@newsroom.test", "reporter-pass1")
	desk := api.login("desk@newsroom.test", "desk-pass2024")

	// wartawan không quản lý user
	code, env := api.do(http.MethodGet, "/api/v1/admin/users", reporter, nil)
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "WF001", env.Error.Code)

	code, env = api.do(http.MethodPost, "/api/v1/admin/articles", reporter, gin.H{
		"title":    "Banjir rob di pesisir utara",
		"content":  "Air laut naik sejak pagi.",
		"category": "Nasional",
	})
	require.Equal(t, http.StatusCreated, code)

	var article struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &article))
	assert.Equal(t, "draft", article.Status)

	base := "/api/v1/admin/articles/" + article.ID

	code, _ = api.do(http.MethodGet, "/api/v1/news/"+article.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code, "draft is not public")

	code, _ = api.do(http.MethodPost, base+"/submit", reporter, nil)
	require.Equal(t, http.StatusOK, code)

	// editor approve lần 2 sau khi bài đã sang pending_admin -> permission denied
	code, _ = api.do(http.MethodPost, base+"/approve", desk, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = api.do(http.MethodPost, base+"/approve", desk, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, base+"/publish", chief, gin.H{"expected_status": "pending_admin"})
	require.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodGet, "/api/v1/news/"+article.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Banjir rob")

	code, env = api.do(http.MethodGet, base+"/notes", chief, nil)
	require.Equal(t, http.StatusOK, code)
	var notes []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	assert.Len(t, notes, 3)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{
		"/api/v1/admin/articles",
		"/api/v1/admin/articles/review",
		"/api/v1/admin/users",
		"/api/v1/auth/me",
	} {
		code, _ := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
	}

	code, _ := api.do(http.MethodGet, "/api/v1/news", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
