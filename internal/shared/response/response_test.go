package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, write func(c *gin.Context)) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	write(c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorWithCode(t *testing.T) {
	code, body := record(t, func(c *gin.Context) {
		ErrorWithCode(c, http.StatusConflict, "WF003", "article was modified", nil)
	})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "data")

	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "WF003", errBody["code"])
	assert.Equal(t, "article was modified", errBody["message"])
	assert.NotContains(t, errBody, "details")
}

func TestError_DefaultCodeByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, CodeBadRequest},
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusTooManyRequests, CodeTooMany},
		{http.StatusServiceUnavailable, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, body := record(t, func(c *gin.Context) {
				Error(c, tt.status, "failed", nil)
			})
			assert.Equal(t, tt.want, body["error"].(map[string]interface{})["code"])
		})
	}
}

func TestError_Details(t *testing.T) {
	t.Run("validation errors keep field map", func(t *testing.T) {
		verr := validation.Errors{"title": errors.New("cannot be blank")}

		_, body := record(t, func(c *gin.Context) {
			Error(c, http.StatusBadRequest, "invalid request", verr)
		})

		details, ok := body["error"].(map[string]interface{})["details"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "cannot be blank", details["title"])
	})

	t.Run("plain error becomes string", func(t *testing.T) {
		_, body := record(t, func(c *gin.Context) {
			Error(c, http.StatusInternalServerError, "boom", errors.New("pool closed"))
		})
		assert.Equal(t, "pool closed", body["error"].(map[string]interface{})["details"])
	})
}

func TestSuccessWithMeta(t *testing.T) {
	code, body := record(t, func(c *gin.Context) {
		SuccessWithMeta(c, http.StatusOK, "ok", []string{"a"}, &Meta{Page: 1, Limit: 20, Total: 1, TotalPages: 1})
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "error")
	assert.Equal(t, float64(1), body["meta"].(map[string]interface{})["total"])
}
