package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/pkg/response"
)

const maxSanitizedBodyBytes = 1 << 20

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeInputs HTML-escapes every string in query parameters, path
// parameters and JSON bodies before any handler logic runs. Multipart bodies
// carry binary upload data and are left untouched.
func SanitizeInputs() gin.HandlerFunc {
	return func(c *gin.Context) {
		sanitizeQuery(c)
		sanitizeParams(c)
		contentType := c.GetHeader("Content-Type")
		if strings.HasPrefix(contentType, "application/json") && c.Request.Body != nil {
			if err := sanitizeJSONBody(c); err != nil {
				response.Error(c, http.StatusBadRequest, "Requête invalide")
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func sanitizeQuery(c *gin.Context) {
	raw := c.Request.URL.Query()
	if len(raw) == 0 {
		return
	}
	clean := make(url.Values, len(raw))
	for key, values := range raw {
		for _, value := range values {
			clean.Add(key, htmlEscaper.Replace(value))
		}
	}
	c.Request.URL.RawQuery = clean.Encode()
}

func sanitizeParams(c *gin.Context) {
	for i := range c.Params {
		c.Params[i].Value = htmlEscaper.Replace(c.Params[i].Value)
	}
}

func sanitizeJSONBody(c *gin.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSanitizedBodyBytes))
	if err != nil {
		return err
	}
	_ = c.Request.Body.Close()
	if len(bytes.TrimSpace(body)) == 0 {
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		return nil
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return err
	}
	clean, err := json.Marshal(sanitizeValue(payload))
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(clean))
	c.Request.ContentLength = int64(len(clean))
	return nil
}

func sanitizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return htmlEscaper.Replace(v)
	case map[string]interface{}:
		for key, item := range v {
			v[key] = sanitizeValue(item)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = sanitizeValue(item)
		}
		return v
	default:
		return v
	}
}
