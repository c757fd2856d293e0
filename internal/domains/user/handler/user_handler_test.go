package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom-backend/internal/domains/user"
	userRepo "newsroom-backend/internal/domains/user/repository"
	userService "newsroom-backend/internal/domains/user/service"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/pkg/jwt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fixture struct {
	router *gin.Engine
	svc    user.Service
	chief  *user.UserDTO
}

// withActor giả lập AuthMiddleware: actor lấy từ header X-Test-User
func withActor(svc user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			actor, err := svc.ResolveActor(c.Request.Context(), uuid.MustParse(id))
			if err == nil {
				c.Request = c.Request.WithContext(workflow.WithActor(c.Request.Context(), actor))
			}
		}
		c.Next()
	}
}

func setupUserRouter(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := userService.NewUserService(userRepo.NewMemoryRepository(), jwt.NewManager("test-secret", time.Hour), nil, nil)
	chief, created, err := svc.Bootstrap(context.Background(), user.CreateUserRequest{
		Email: "chief@koran.id", Password: "rahasia123", FullName: "Pemimpin Redaksi",
	})
	require.NoError(t, err)
	require.True(t, created)

	h := NewUserHandler(svc)
	r := gin.New()
	r.Use(withActor(svc))
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", h.Me)
	r.GET("/admin/users", h.ListUsers)
	r.POST("/admin/users", h.CreateUser)
	r.PATCH("/admin/users/:id/role", h.SetRole)

	return &fixture{router: r, svc: svc, chief: chief}
}

func (f *fixture) do(t *testing.T, method, path, actorID string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set("X-Test-User", actorID)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestLoginHandler(t *testing.T) {
	f := setupUserRouter(t)

	w, env := f.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "chief@koran.id", "password": "rahasia123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var res user.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, workflow.RoleRedaktur, res.User.Role)

	w, env = f.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "chief@koran.id", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, _ = f.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeHandler(t *testing.T) {
	f := setupUserRouter(t)

	w, _ := f.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := f.do(t, http.MethodGet, "/auth/me", f.chief.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var me user.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, f.chief.ID, me.ID)
}

func TestUserAdminHandlers(t *testing.T) {
	f := setupUserRouter(t)
	chief := f.chief.ID.String()

	// redaktur tạo editor
	w, env := f.do(t, http.MethodPost, "/admin/users", chief, gin.H{
		"email": "sari@koran.id", "password": "rahasia123", "full_name": "Sari", "role": "editor",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var editor user.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &editor))
	assert.Equal(t, workflow.RoleEditor, editor.Role)

	// email trùng
	w, _ = f.do(t, http.MethodPost, "/admin/users", chief, gin.H{
		"email": "sari@koran.id", "password": "rahasia123", "full_name": "Sari", "role": "editor",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// editor không được quản lý user
	w, env = f.do(t, http.MethodGet, "/admin/users", editor.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, workflow.ErrCodePermissionDenied, env.Error.Code)

	// redaktur list
	w, env = f.do(t, http.MethodGet, "/admin/users?role=editor", chief, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var users []user.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 1)

	// đổi role
	w, env = f.do(t, http.MethodPatch, "/admin/users/"+editor.ID.String()+"/role", chief, gin.H{"role": "wartawan"})
	assert.Equal(t, http.StatusOK, w.Code)
	var changed user.UserDTO
	require.NoError(t, json.Unmarshal(env.Data, &changed))
	assert.Equal(t, workflow.RoleWartawan, changed.Role)

	// guest không gán được
	w, _ = f.do(t, http.MethodPatch, "/admin/users/"+editor.ID.String()+"/role", chief, gin.H{"role": "guest"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// id không hợp lệ
	w, _ = f.do(t, http.MethodPatch, "/admin/users/abc/role", chief, gin.H{"role": "editor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
