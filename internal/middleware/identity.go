package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/pkg/response"
	"github.com/veridoc-app/veridoc/internal/pkg/token"
)

const (
	ContextActorIDKey   = "actor_id"
	ContextCompanyIDKey = "company_id"
)

// Identity verifies the bearer token minted by the upstream auth layer and
// injects the actor context. It does not authenticate users itself.
func Identity(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "Authentification requise")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, http.StatusUnauthorized, "Authentification invalide")
			c.Abort()
			return
		}
		claims, err := token.Parse(parts[1], secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Authentification invalide")
			c.Abort()
			return
		}
		c.Set(ContextActorIDKey, claims.UserID)
		c.Set(ContextCompanyIDKey, claims.CompanyID)
		c.Next()
	}
}

func ActorID(c *gin.Context) int64 {
	value, _ := c.Get(ContextActorIDKey)
	id, _ := value.(int64)
	return id
}

func CompanyID(c *gin.Context) int64 {
	value, _ := c.Get(ContextCompanyIDKey)
	id, _ := value.(int64)
	return id
}
