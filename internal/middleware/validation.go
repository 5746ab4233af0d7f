package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// WithDimensions parses the named query parameters as positive integers and
// stores them on the context under the same names. Absent parameters are
// left unset; anything else aborts with 400.
func WithDimensions(params ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range params {
			raw, ok := c.GetQuery(name)
			if !ok || raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"statusCode": http.StatusBadRequest,
					"message":    fmt.Sprintf("%s must be a positive integer", name),
				})
				return
			}
			c.Set(name, n)
		}
		c.Next()
	}
}
