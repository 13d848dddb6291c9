package web

import (
	"errors"
	"net/http"
	"strings"

	"freightdesk/internal/apiclient"
	"freightdesk/internal/auth"
	"freightdesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// api dispatches /api/auth/login and /api/auth/logout locally and forwards the rest.
func (s *Server) api(c *gin.Context) {
	switch c.Param("path") {
	case "/auth/login":
		if c.Request.Method == http.MethodPost {
			s.apiLogin(c)
			return
		}
	case "/auth/logout":
		if c.Request.Method == http.MethodPost {
			middleware.ClearTokenCookie(c, s.opts.SecureCookie)
			c.JSON(http.StatusOK, gin.H{"ok": true})
			return
		}
	}
	s.proxy.Handle(c)
}

// apiLogin exchanges credentials for a token and keeps it in the httpOnly cookie.
func (s *Server) apiLogin(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	accessToken, err := s.client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			c.JSON(apiErr.Status, gin.H{"message": apiErr.Message})
			return
		}
		s.log.Error("login call failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if accessToken == "" {
		c.JSON(http.StatusBadGateway, gin.H{"message": "No accessToken returned from API"})
		return
	}

	middleware.SetTokenCookie(c, accessToken, s.opts.CookieMaxAge, s.opts.SecureCookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) loginPage(c *gin.Context) {
	if token, err := c.Cookie(auth.CookieName); err == nil && token != "" {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	s.render(c, http.StatusOK, "login.html", gin.H{"Title": "Sign in", "Next": safeNext(c.Query("next")), "Email": "", "Error": ""})
}

func (s *Server) loginForm(c *gin.Context) {
	var req loginPayload
	_ = c.ShouldBind(&req)
	next := safeNext(c.PostForm("next"))

	fail := func(status int, message string) {
		s.render(c, status, "login.html", gin.H{"Title": "Sign in", "Next": next, "Email": req.Email, "Error": message})
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		fail(http.StatusBadRequest, "Email and password are required")
		return
	}
	accessToken, err := s.client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) {
			fail(apiErr.Status, apiErr.Message)
			return
		}
		s.log.Error("login call failed", zap.Error(err))
		fail(http.StatusBadGateway, "The API is unavailable")
		return
	}
	if accessToken == "" {
		fail(http.StatusBadGateway, "No accessToken returned from API")
		return
	}

	middleware.SetTokenCookie(c, accessToken, s.opts.CookieMaxAge, s.opts.SecureCookie)
	c.Redirect(http.StatusSeeOther, next)
}

func (s *Server) logoutForm(c *gin.Context) {
	middleware.ClearTokenCookie(c, s.opts.SecureCookie)
	c.Redirect(http.StatusSeeOther, "/login")
}
