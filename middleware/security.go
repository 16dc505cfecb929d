package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self' blob:",
	"style-src 'self' blob: 'unsafe-inline' https://unpkg.com https://fonts.googleapis.com https://cdn.jsdelivr.net",
	"script-src 'self' 'unsafe-inline' https://ajax.googleapis.com https://www.googletagmanager.com https://code.jquery.com https://unpkg.com https://cdn.jsdelivr.net",
	"connect-src 'self' https://www.googletagmanager.com https://www.google-analytics.com",
	"img-src 'self' data:",
	"font-src 'self' https://fonts.gstatic.com",
	"frame-ancestors 'self'",
}, "; ")

// SecurityHeaders sets the content security policy and related response headers.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
