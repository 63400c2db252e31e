package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient(t *testing.T) {
	engine := gin.New()
	engine.POST("/api/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": body, "message": "ok"})
	})
	engine.GET("/api/fail", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    shared.CodeValidationFailed,
			"errors":  []shared.FieldError{{Field: "email", Message: "Email is invalid"}},
		})
	})
	engine.GET("/api/file", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/csv", []byte("a,b\n"))
	})

	client := NewAPIClient(t, engine, "/api")

	resp := client.Post("/echo", map[string]any{"name": "An"})
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.True(t, resp.Envelope.Success)
	assert.Equal(t, map[string]any{"name": "An"}, DataAs[map[string]any](t, resp))

	resp = client.Get("/fail")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, shared.CodeValidationFailed, resp.Envelope.Code)
	assert.Equal(t, []string{"email"}, resp.Envelope.Fields())

	resp = client.Get("/file")
	assert.Equal(t, "a,b\n", string(resp.Body))
	assert.False(t, resp.Envelope.Success)
}

func TestRecordingEventHandler(t *testing.T) {
	h := NewRecordingEventHandler()
	assert.Empty(t, h.EventTypes())

	p, err := faculty.NewPosition("GVCN", "Homeroom teacher", "", nil)
	require.NoError(t, err)
	for _, e := range p.GetDomainEvents() {
		require.NoError(t, h.Handle(context.Background(), e))
	}
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, []string{faculty.EventTypePositionCreated}, h.Types())
}

func TestWaitForCondition(t *testing.T) {
	n := 0
	assert.True(t, WaitForCondition(t, func() bool { n++; return n >= 3 }, time.Second, time.Millisecond))
	assert.False(t, WaitForCondition(t, func() bool { return false }, 5*time.Millisecond, time.Millisecond))
}
