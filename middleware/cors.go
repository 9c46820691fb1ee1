package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsHeaders = "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With"
	corsMethods = "POST, OPTIONS, GET, PUT, DELETE"
)

// CORSMiddleware answers the browser's cross-origin checks.
// The session lives in a cookie, so the origin is echoed instead of "*" (credentials).
// An empty list allows every origin (DEV).
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (len(allowed) == 0 || allowed[origin]) {
			// für DEV: "http://localhost:3000" (erlaubt zugriffe von...)
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", corsHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", corsMethods)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
