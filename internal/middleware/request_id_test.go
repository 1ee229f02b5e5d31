package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMintedWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	var inContext string
	router.GET("/", func(c *gin.Context) {
		inContext = c.GetString(ContextRequestIDKey)
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	echoed := resp.Header().Get("X-Request-Id")
	require.Regexp(t, `^[0-9a-f]{32}$`, echoed)
	require.Equal(t, echoed, inContext)
}

func TestRequestIDEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "trace-1234")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, "trace-1234", resp.Header().Get("X-Request-Id"))
}
