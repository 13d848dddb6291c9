package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"freightdesk/internal/apiclient"
	"freightdesk/internal/auth"
	"freightdesk/internal/middleware"
	"freightdesk/internal/model"
	"freightdesk/internal/proxy"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const ctxToken = "accessToken"

// Options configure the web tier.
type Options struct {
	SecureCookie bool
	CookieMaxAge time.Duration
}

// Server renders the dashboard and forwards /api calls to the backend.
type Server struct {
	client *apiclient.Client
	proxy  *proxy.Forwarder
	opts   Options
	log    *zap.Logger
}

func NewServer(client *apiclient.Client, fwd *proxy.Forwarder, opts Options, log *zap.Logger) *Server {
	if opts.CookieMaxAge == 0 {
		opts.CookieMaxAge = 7 * 24 * time.Hour
	}
	return &Server{client: client, proxy: fwd, opts: opts, log: log}
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	},
	"kb":       func(n int64) string { return fmt.Sprintf("%.1f KB", float64(n)/1024) },
	"statuses": func() []string { return model.OrderStatuses },
	"add":      func(a, b int) int { return a + b },
	"sub":      func(a, b int) int { return a - b },
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Router builds the web engine with every route mounted.
func (s *Server) Router(middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middlewares...)
	r.SetHTMLTemplate(Templates())
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	r.GET("/login", s.loginPage)
	r.POST("/login", s.loginForm)
	r.POST("/logout", s.logoutForm)

	// one catch-all; the two auth routes are dispatched inside it
	r.Any("/api/*path", s.api)

	dash := r.Group("/dashboard", s.requireSession)
	{
		dash.GET("", s.overview)
		dash.GET("/orders", s.orders)
		dash.GET("/suppliers", s.suppliers)
		dash.POST("/suppliers", s.createSupplier)
		dash.POST("/suppliers/:id", s.updateSupplier)
		dash.POST("/suppliers/:id/delete", s.deleteSupplier)
		dash.GET("/forwarders", s.forwarders)
		dash.POST("/forwarders", s.createForwarder)
		dash.POST("/forwarders/:id", s.updateForwarder)
		dash.POST("/forwarders/:id/delete", s.deleteForwarder)
		dash.GET("/invoices", s.invoices)
		dash.POST("/invoices", s.createInvoice)
		dash.GET("/invoices/:id", s.invoiceDetail)
		dash.POST("/invoices/:id", s.updateInvoice)
		dash.POST("/invoices/:id/documents", s.uploadDocument)
		dash.POST("/invoices/:id/documents/:documentId/delete", s.deleteDocument)
	}
}

// requireSession redirects to /login?next=<path> when there is no access_token cookie.
func (s *Server) requireSession(c *gin.Context) {
	token, err := c.Cookie(auth.CookieName)
	if err != nil || token == "" {
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	c.Set(ctxToken, token)
	c.Next()
}

func token(c *gin.Context) string {
	return c.GetString(ctxToken)
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/dashboard"
	}
	return next
}

func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	c.HTML(status, name, data)
}

// apiFailure renders an API error, sending the user back to /login when the session is gone.
func (s *Server) apiFailure(c *gin.Context, err error) {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		s.log.Error("api call failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		s.render(c, http.StatusBadGateway, "error.html", gin.H{
			"Title": "Error", "Status": http.StatusBadGateway, "Message": "The API is unavailable",
		})
		return
	}
	if apiErr.Status == http.StatusUnauthorized {
		middleware.ClearTokenCookie(c, s.opts.SecureCookie)
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		return
	}
	s.render(c, apiErr.Status, "error.html", gin.H{"Title": "Error", "Status": apiErr.Status, "Message": apiErr.Message})
}

// actionFailure sends a form post back to its page with the API message.
func (s *Server) actionFailure(c *gin.Context, back string, err error) {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status != http.StatusUnauthorized {
		c.Redirect(http.StatusSeeOther, back+"?error="+url.QueryEscape(apiErr.Message))
		return
	}
	s.apiFailure(c, err)
}
