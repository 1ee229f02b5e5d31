package response

import "github.com/gin-gonic/gin"

// Error responses expose a single human-readable message field, nothing else.
type ErrorBody struct {
	Message string `json:"message"`
}

func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Message: message})
}
