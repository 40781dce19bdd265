package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AdminCookieName carries the signed admin session token.
const AdminCookieName = "admin_session"

// SetAdminSession stores token in an httpOnly, same-site cookie scoped to the
// whole site. secure marks it HTTPS-only.
func SetAdminSession(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminCookieName, token, int(ttl/time.Second), "/", "", secure, true)
}

// ClearAdminSession expires the admin cookie.
func ClearAdminSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminCookieName, "", -1, "/", "", false, true)
}
