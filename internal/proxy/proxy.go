package proxy

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"freightdesk/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type credentialKey struct{}

// Forwarder relays browser calls under /api to the backend, swapping the access_token
// cookie for a bearer header.
type Forwarder struct {
	target *url.URL
	rp     *httputil.ReverseProxy
	log    *zap.Logger
}

// New builds a forwarder for apiURL. transport may be nil.
func New(apiURL string, transport http.RoundTripper, log *zap.Logger) (*Forwarder, error) {
	target, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return nil, err
	}

	f := &Forwarder{target: target, log: log}
	f.rp = &httputil.ReverseProxy{
		Rewrite:      f.rewrite,
		Transport:    transport,
		ErrorHandler: f.fail,
	}
	return f, nil
}

func (f *Forwarder) rewrite(pr *httputil.ProxyRequest) {
	out := pr.Out
	out.URL.Scheme = f.target.Scheme
	out.URL.Host = f.target.Host
	out.URL.Path = f.target.Path + strings.TrimPrefix(pr.In.URL.Path, "/api")
	out.URL.RawPath = ""
	out.URL.RawQuery = pr.In.URL.RawQuery
	out.Host = f.target.Host

	out.Header.Del("Cookie")
	out.Header.Del("Authorization")
	if token, ok := pr.In.Context().Value(credentialKey{}).(string); ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}
}

func (f *Forwarder) fail(w http.ResponseWriter, r *http.Request, err error) {
	f.log.Error("proxy request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
}

// Handle forwards the request when an access_token cookie is present and answers 401
// otherwise without contacting the backend.
func (f *Forwarder) Handle(c *gin.Context) {
	token, err := c.Cookie(auth.CookieName)
	if err != nil || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ctx := context.WithValue(c.Request.Context(), credentialKey{}, token)
	f.rp.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
}
