package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/middleware"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stemsi/exstem-proctor/internal/response"
	"github.com/stemsi/exstem-proctor/internal/service"
)

// AuthHandler handles the admin session endpoints.
type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
	log          zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the session
// cookie HTTPS-only.
func NewAuthHandler(authService *service.AuthService, secureCookie bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		log:          log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/admin/login
// Checks the admin password and sets the session cookie.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An oversized password cannot match; anything else is a bad body.
		if fields := validationFields(err); fields != nil {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Warn().Str("ip", c.ClientIP()).Msg("Failed admin login")
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Failed to issue admin session")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	middleware.SetAdminSession(c, token, h.authService.TTL(), h.secureCookie)
	h.log.Info().Str("ip", c.ClientIP()).Msg("Admin logged in")
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// AdminLogout godoc
// POST /api/admin/logout
// Clears the session cookie. Works with or without a valid session.
func (h *AuthHandler) AdminLogout(c *gin.Context) {
	middleware.ClearAdminSession(c)
	response.Success(c, http.StatusOK, gin.H{"success": true})
}
