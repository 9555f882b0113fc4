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

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Register(NewDomainGroup("test", "/test").
		GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") }).
		POST("/echo", func(c *gin.Context) { c.String(http.StatusCreated, "created") }).
		PUT("/echo", func(c *gin.Context) { c.String(http.StatusOK, "updated") }))
	r.Setup()

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/api/v1/test/ping", http.StatusOK, "pong"},
		{http.MethodPost, "/api/v1/test/echo", http.StatusCreated, "created"},
		{http.MethodPut, "/api/v1/test/echo", http.StatusOK, "updated"},
		{http.MethodGet, "/test/ping", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRouterUse_AppliesOnlyToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) {
		_, seen := c.Get("api")
		c.JSON(http.StatusOK, gin.H{"api": seen})
	})

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Set("api", true)
		c.Next()
	})
	r.Register(NewDomainGroup("items", "/items").GET("", func(c *gin.Context) {
		_, seen := c.Get("api")
		c.JSON(http.StatusOK, gin.H{"api": seen})
	}))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
	assert.JSONEq(t, `{"api":true}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"api":false}`, w.Body.String())
}

func TestDomainGroup_SubgroupsAndMiddleware(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var order []string
	parent := NewDomainGroup("profiles", "/profiles").Use(func(c *gin.Context) {
		order = append(order, "parent")
		c.Next()
	})
	parent.Group("buyers", "/buyers").
		Use(func(c *gin.Context) {
			order = append(order, "child")
			c.Next()
		}).
		GET("/:userId", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("userId"))
		})

	assert.Equal(t, "profiles", parent.Name())
	assert.Equal(t, "/profiles", parent.Prefix())

	r.Register(parent)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/buyers/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())
	assert.Equal(t, []string{"parent", "child"}, order)
}
