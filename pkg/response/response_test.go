package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestHelpers(t *testing.T) {
	cases := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		msg    string
	}{
		{"success", func(c *gin.Context) { Success(c, gin.H{"a": 1}) }, http.StatusOK, "success"},
		{"created", func(c *gin.Context) { Created(c, nil) }, http.StatusCreated, "created"},
		{"bad request", func(c *gin.Context) { BadRequest(c, "nope") }, http.StatusBadRequest, "nope"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "who") }, http.StatusUnauthorized, "who"},
		{"not found", func(c *gin.Context) { NotFound(c, "gone") }, http.StatusNotFound, "gone"},
		{"conflict", func(c *gin.Context) { Conflict(c, "dup") }, http.StatusConflict, "dup"},
		{"too many", TooManyRequests, http.StatusTooManyRequests, "too many requests"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tc.call(c)
			assert.Equal(t, tc.status, w.Code)
			r := decode(t, w)
			assert.Equal(t, tc.status, r.Code)
			assert.Equal(t, tc.msg, r.Message)
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	InternalError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	require.Len(t, c.Errors, 1)
	assert.EqualError(t, c.Errors[0].Err, "pq: connection refused")
}
