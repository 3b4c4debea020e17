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

func TestRouterMountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()

	products := NewDomainGroup("catalog", "/products")
	products.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(products)
	r.Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/products", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDomainGroupMiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()

	var order []string
	sessions := NewDomainGroup("sessions", "/sessions")
	sessions.Use(func(c *gin.Context) {
		order = append(order, "group")
		c.Next()
	})
	sessions.POST("/open", func(c *gin.Context) {
		order = append(order, "open")
		c.Status(http.StatusCreated)
	})

	movements := sessions.Group("movements", "/:id/movements")
	movements.POST("/pay-in", func(c *gin.Context) {
		order = append(order, "pay-in")
		c.Status(http.StatusCreated)
	})

	NewRouter(engine).Register(sessions).Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/open", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc/movements/pay-in", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// group middleware ran before both handlers, including the subgroup's
	assert.Equal(t, []string{"group", "open", "group", "pay-in"}, order)
}

func TestDomainGroupRouteMethods(t *testing.T) {
	engine := gin.New()

	group := NewDomainGroup("inventory", "/inventory")
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	group.GET("", handler).
		POST("/adjust", handler).
		PUT("/:id", handler).
		PATCH("/:id", handler).
		DELETE("/:id", handler)

	NewRouter(engine).Register(group).Setup()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/inventory"},
		{http.MethodPost, "/api/v1/inventory/adjust"},
		{http.MethodPut, "/api/v1/inventory/x"},
		{http.MethodPatch, "/api/v1/inventory/x"},
		{http.MethodDelete, "/api/v1/inventory/x"},
	} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
	}

	assert.Equal(t, "inventory", group.Name())
	assert.Equal(t, "/inventory", group.Prefix())
}
