package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// RobotsHeader is sent on every response; exam content must not be indexed.
const RobotsHeader = "noindex, nofollow"

// RobotsTxt disallows all crawling.
const RobotsTxt = "User-agent: *\nDisallow: /\n"

// NoIndex sets X-Robots-Tag on every response.
func NoIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Robots-Tag", RobotsHeader)
		c.Next()
	}
}

// CacheControl sets the Cache-Control header for responses, usually static assets.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAgeSeconds))
		c.Next()
	}
}

// NoStore keeps API answers (questions, scores) out of shared caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
