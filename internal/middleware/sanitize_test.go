package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SanitizeInputs())
	var got map[string]interface{}
	router.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		c.Status(http.StatusOK)
	})

	payload := `{"name":"<script>alert('x')</script>","nested":{"v":"a&b/c"},"list":["<i>"],"n":3}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	require.Equal(t, "&lt;script&gt;alert(&#x27;x&#x27;)&lt;&#x2F;script&gt;", got["name"])
	nested := got["nested"].(map[string]interface{})
	require.Equal(t, "a&amp;b&#x2F;c", nested["v"])
	list := got["list"].([]interface{})
	require.Equal(t, "&lt;i&gt;", list[0])
	require.Equal(t, float64(3), got["n"])
}

func TestSanitizeRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SanitizeInputs())
	router.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"broken`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSanitizeSkipsMultipartBodies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SanitizeInputs())
	var got []byte
	router.POST("/upload", func(c *gin.Context) {
		got, _ = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	binary := []byte("%PDF-<binary>\x00\x01\x02</binary>")
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(binary))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, binary, got, "binary upload bodies must pass through untouched")
}

func TestSanitizeQueryValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SanitizeInputs())
	var got string
	router.GET("/search", func(c *gin.Context) {
		got = c.Query("q")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/search?q="+"%3Cb%3E", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, "&lt;b&gt;", got)
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "strict-origin-when-cross-origin", resp.Header().Get("Referrer-Policy"))
	require.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
}

func TestDocumentIDValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	called := false
	router.GET("/documents/:id", DocumentID(), func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.False(t, called, "handler must not run on malformed ids")
	require.Contains(t, resp.Body.String(), "Format d'identifiant de document invalide")

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/documents/123", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.True(t, called)
}
