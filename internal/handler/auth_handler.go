package handler

import (
	"net/http"

	"freightdesk/internal/auth"
	"freightdesk/internal/middleware"
	"freightdesk/internal/service"
	"freightdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  service.AuthService
	issuer       *auth.Issuer
	secureCookie bool
	log          *zap.Logger
}

func NewAuthHandler(authService service.AuthService, issuer *auth.Issuer, secureCookie bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, issuer: issuer, secureCookie: secureCookie, log: log}
}

// RegisterRoutes mounts login/logout on public and /auth/me on protected.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/logout", h.Logout)
	protected.GET("/auth/me", h.Me)
}

// Login
// @Summary      Sign in
// @Description  Returns an access token and also sets it as the access_token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  service.LoginResponse
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	middleware.SetTokenCookie(c, res.AccessToken, h.issuer.TTL(), h.secureCookie)
	c.JSON(http.StatusOK, res)
}

// Logout clears the access_token cookie
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Message
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, response.Ack("Logged out"))
}

// Me returns the signed-in user
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  model.User
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
