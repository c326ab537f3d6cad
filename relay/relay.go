// Package relay forwards browser requests to the completion providers under one origin.
package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"zhiyi-cms/middleware"

	"github.com/gin-gonic/gin"
)

// Route maps an inbound path prefix onto an upstream base URL.
type Route struct {
	Prefix   string
	Upstream *url.URL
}

const (
	DefaultOpenAIUpstream    = "https://api.openai.com/v1"
	DefaultAnthropicUpstream = "https://api.anthropic.com/v1"
	DefaultGoogleUpstream    = "https://generativelanguage.googleapis.com/v1"
)

// Routes builds the three fixed prefixes. Empty upstreams fall back to the public APIs.
func Routes(openAI, anthropic, google string) ([]Route, error) {
	pairs := []struct{ prefix, upstream, fallback string }{
		{"/api/openai", openAI, DefaultOpenAIUpstream},
		{"/api/anthropic", anthropic, DefaultAnthropicUpstream},
		{"/api/google", google, DefaultGoogleUpstream},
	}

	routes := make([]Route, 0, len(pairs))
	for _, p := range pairs {
		raw := p.upstream
		if raw == "" {
			raw = p.fallback
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid upstream for %s: %q", p.prefix, raw)
		}
		routes = append(routes, Route{Prefix: p.prefix, Upstream: u})
	}
	return routes, nil
}

// NewProxy strips the prefix and forwards to the upstream. Request headers,
// Authorization included, pass through unchanged and bodies are not touched.
func NewProxy(route Route) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, route.Prefix)
			pr.Out.URL.RawPath = ""
			pr.SetURL(route.Upstream)
		},
		ModifyResponse: func(resp *http.Response) error {
			// the relay sets its own CORS headers
			for key := range resp.Header {
				if strings.HasPrefix(http.CanonicalHeaderKey(key), "Access-Control-") {
					resp.Header.Del(key)
				}
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "relay could not reach upstream: " + err.Error()},
			})
		},
	}
}

// NewRouter serves every route behind a permissive CORS policy.
func NewRouter(routes []Route) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS())

	for _, route := range routes {
		proxy := NewProxy(route)
		r.Any(route.Prefix+"/*path", func(c *gin.Context) {
			proxy.ServeHTTP(c.Writer, c.Request)
		})
	}

	return r
}
