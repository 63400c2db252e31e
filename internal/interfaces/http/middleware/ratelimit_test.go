package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/school/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows up to burst then blocks", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Hour, 3)
		defer rl.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("1.1.1.1"), "request %d", i)
		}
		assert.False(t, rl.Allow("1.1.1.1"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Hour, 1)
		defer rl.Stop()

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("remaining counts down", func(t *testing.T) {
		rl := NewRateLimiter(5, time.Hour, 5)
		defer rl.Stop()

		assert.Equal(t, 5, rl.Remaining("k"))
		rl.Allow("k")
		rl.Allow("k")
		assert.Equal(t, 3, rl.Remaining("k"))
	})

	t.Run("defaults burst to requests", func(t *testing.T) {
		rl := NewRateLimiter(7, time.Minute, 0)
		defer rl.Stop()
		assert.Equal(t, 7, rl.Burst())
	})

	t.Run("evicts idle clients", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute, 1)
		defer rl.Stop()

		now := time.Now()
		rl.now = func() time.Time { return now }
		rl.Allow("old")
		now = now.Add(3 * time.Minute)
		rl.Allow("fresh")

		rl.evictIdle()
		assert.Equal(t, 1, rl.size())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(2, time.Hour, 2)
	defer rl.Stop()

	r := gin.New()
	r.Use(RequestID(), RateLimit(rl))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	w = do()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeRateLimited, resp.Code)
	assert.False(t, resp.Success)
}
