package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/pkg/jwt"
)

type stubResolver struct {
	actors map[uuid.UUID]workflow.Actor
	err    error
}

func (r *stubResolver) ResolveActor(ctx context.Context, userID uuid.UUID) (workflow.Actor, error) {
	if r.err != nil {
		return workflow.Guest(), r.err
	}
	actor, ok := r.actors[userID]
	if !ok {
		return workflow.Guest(), errors.New("unauthorized access")
	}
	return actor, nil
}

func setupAuthRouter(tokens *jwt.Manager, resolver ActorResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	protected := r.Group("/admin", AuthMiddleware(tokens, resolver))
	protected.GET("/whoami", func(c *gin.Context) {
		actor := workflow.ActorFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})
	protected.GET("/users", RequireRole(workflow.RoleRedaktur), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	editor := workflow.Actor{ID: uuid.New(), Role: workflow.RoleEditor}
	redaktur := workflow.Actor{ID: uuid.New(), Role: workflow.RoleRedaktur}
	resolver := &stubResolver{actors: map[uuid.UUID]workflow.Actor{editor.ID: editor, redaktur.ID: redaktur}}
	router := setupAuthRouter(tokens, resolver)

	token := func(id uuid.UUID) string {
		tok, _, err := tokens.GenerateAccessToken(id.String(), "x@koran.id")
		require.NoError(t, err)
		return "Bearer " + tok
	}
	foreign, _, err := jwt.NewManager("other-secret", time.Hour).GenerateAccessToken(editor.ID.String(), "x@koran.id")
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/admin/whoami", "", http.StatusUnauthorized},
		{"wrong scheme", "/admin/whoami", "Basic abc", http.StatusUnauthorized},
		{"foreign signature", "/admin/whoami", "Bearer " + foreign, http.StatusUnauthorized},
		{"unknown user", "/admin/whoami", token(uuid.New()), http.StatusUnauthorized},
		{"valid token", "/admin/whoami", token(editor.ID), http.StatusOK},
		{"role gate refuses editor", "/admin/users", token(editor.ID), http.StatusForbidden},
		{"role gate admits redaktur", "/admin/users", token(redaktur.ID), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
		})
	}
}

func TestAuthMiddleware_StorageFailure(t *testing.T) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	router := setupAuthRouter(tokens, &stubResolver{err: workflow.Storage("resolve actor", errors.New("db down"))})

	tok, _, err := tokens.GenerateAccessToken(uuid.NewString(), "x@koran.id")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}
