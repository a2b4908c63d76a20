package blotter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOriginPrefersConfiguredBaseURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/blotter/abc", nil)

	h := NewHandler(nil, "", "https://records.example.org/")
	assert.Equal(t, "https://records.example.org", h.origin(c))

	h = NewHandler(nil, "", "")
	assert.Equal(t, "http://"+c.Request.Host, h.origin(c))
}
