package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs method, path, client, status, latency and the caller when one is known.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		caller := "-"
		if p, err := GetPrincipalFromContext(c); err == nil {
			caller = p.UserID.String()
		}

		log.Printf(
			"[%s] %s %s %d %s user=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
			caller,
		)
		if len(c.Errors) > 0 {
			log.Printf("Request errors: %s", c.Errors.String())
		}
	}
}
