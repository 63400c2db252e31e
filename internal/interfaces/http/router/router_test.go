package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) { c.String(http.StatusOK, c.FullPath()) }

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterPrefix(t *testing.T) {
	assert.Equal(t, "/api", NewRouter(gin.New()).Prefix())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).Prefix())
	assert.Equal(t, "/school/v1", NewRouter(gin.New(), WithBasePath("/school"), WithAPIVersion("v1")).Prefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	teachers := NewDomainGroup("teachers", "/teachers").
		GET("", ok).
		GET("/stats", ok).
		GET("/:id", ok).
		POST("", ok).
		PUT("/:id", ok).
		DELETE("/:id", ok)

	var hits int
	NewRouter(engine).
		Use(func(c *gin.Context) { hits++; c.Next() }).
		Register(teachers).
		Setup()

	tests := []struct {
		method, path, pattern string
	}{
		{http.MethodGet, "/api/teachers", "/api/teachers"},
		{http.MethodGet, "/api/teachers/stats", "/api/teachers/stats"},
		{http.MethodGet, "/api/teachers/123", "/api/teachers/:id"},
		{http.MethodPost, "/api/teachers", "/api/teachers"},
		{http.MethodPut, "/api/teachers/123", "/api/teachers/:id"},
		{http.MethodDelete, "/api/teachers/123", "/api/teachers/:id"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, tt.method+" "+tt.path)
		assert.Equal(t, tt.pattern, w.Body.String())
	}
	assert.Equal(t, len(tests), hits)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/teachers").Code)
}

func TestDomainGroup_SubgroupsAndMiddleware(t *testing.T) {
	engine := gin.New()
	users := NewDomainGroup("users", "/users")
	users.Use(func(c *gin.Context) { c.Header("X-Group", "users"); c.Next() })
	users.GET("/:id", ok)
	users.Group("avatar", "/:id/avatar").
		POST("/upload-url", ok).
		PUT("", ok)

	NewRouter(engine).Register(users).Setup()

	w := serve(engine, http.MethodPost, "/api/users/42/avatar/upload-url")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/users/:id/avatar/upload-url", w.Body.String())
	assert.Equal(t, "users", w.Header().Get("X-Group"))

	w = serve(engine, http.MethodPut, "/api/users/42/avatar")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "users", users.Name())
	assert.Equal(t, "/users", users.Prefix())
}
