package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithRequest(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestOpenAuthorizerAlwaysAdmin(t *testing.T) {
	c := ctxWithRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	d := Open{}.Authorize(c)
	assert.True(t, d.Admin)
}

func TestSharedKeyAuthorizer(t *testing.T) {
	a := SharedKey{Key: "sekrit"}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "sekrit")
	assert.True(t, a.Authorize(ctxWithRequest(req)).Admin)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "wrong")
	assert.False(t, a.Authorize(ctxWithRequest(req)).Admin)

	assert.False(t, a.Authorize(ctxWithRequest(httptest.NewRequest(http.MethodGet, "/", nil))).Admin)
}

func TestRequireAdminRejectsWith403(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secure", RequireAdmin(SharedKey{Key: "sekrit"}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set(AdminKeyHeader, "sekrit")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIsAdminRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?admin=1", nil)
	assert.True(t, IsAdminRequest("", ctxWithRequest(req)))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminKeyHeader, "sekrit")
	assert.True(t, IsAdminRequest("sekrit", ctxWithRequest(req)))
	assert.False(t, IsAdminRequest("other", ctxWithRequest(req)))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, IsAdminRequest("sekrit", ctxWithRequest(req)))
}

func TestRequestToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?token=abc", nil)
	assert.Equal(t, "abc", RequestToken(ctxWithRequest(req)))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(PublicTokenHeader, "def")
	assert.Equal(t, "def", RequestToken(ctxWithRequest(req)))
}
