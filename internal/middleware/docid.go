package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/pkg/response"
)

const invalidDocumentIDMessage = "Format d'identifiant de document invalide"

var numericIDPattern = regexp.MustCompile(`^\d+$`)

// DocumentID rejects malformed path parameters before any repository lookup.
func DocumentID(params ...string) gin.HandlerFunc {
	if len(params) == 0 {
		params = []string{"id"}
	}
	return func(c *gin.Context) {
		for _, name := range params {
			if !numericIDPattern.MatchString(c.Param(name)) {
				response.Error(c, http.StatusBadRequest, invalidDocumentIDMessage)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
