package auth

import "github.com/gin-gonic/gin"

// SecurityHeadersMiddleware adds security headers to all responses. The API
// only serves JSON and rendered note previews, so the policy is strict.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		// Note previews may embed cover images hosted by Amazon or OpenLibrary
		c.Header("Content-Security-Policy", "default-src 'none'; img-src https: data:; style-src 'unsafe-inline'; frame-ancestors 'none'")
		c.Next()
	}
}
