// Package devproxy forwards browser requests under a local prefix to a
// vendor origin, so a UI served from the dashboard can call vendors that do
// not send CORS headers.
package devproxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// Proxy holds one reverse proxy per configured route.
type Proxy struct {
	Logger    *logger.Logger
	userAgent string
	handlers  map[string]http.Handler
}

// New builds the proxies. userAgent, when set, replaces the browser's.
func New(routes []models.MProxyRouteConfig, userAgent string, log *logger.Logger) (*Proxy, error) {
	p := &Proxy{
		Logger:    log,
		userAgent: userAgent,
		handlers:  make(map[string]http.Handler, len(routes)),
	}

	for _, route := range routes {
		prefix := strings.TrimRight(route.Prefix, "/")
		target, err := url.Parse(route.Target)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, helpers.NewConfigurationError(fmt.Sprintf("proxy target '%s' is not an absolute URL", route.Target), err)
		}
		if _, dup := p.handlers[prefix]; dup {
			return nil, helpers.NewConfigurationError(fmt.Sprintf("proxy prefix '%s' is declared twice", prefix), nil)
		}
		p.handlers[prefix] = p.reverseProxy(prefix, target)
		log.Info("Dev proxy %s -> %s", prefix, target)
	}
	return p, nil
}

// -----------------------------------------------------------------------------

func (p *Proxy) reverseProxy(prefix string, target *url.URL) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.Out.URL.Path = strings.TrimPrefix(r.In.URL.Path, prefix)
			r.Out.URL.RawPath = ""
			r.SetURL(target)
			r.Out.Header.Del("Origin")
			r.Out.Header.Del("Referer")
			r.Out.Header.Del("Cookie")
			if p.userAgent != "" {
				r.Out.Header.Set("User-Agent", p.userAgent)
			}
		},
		ModifyResponse: func(res *http.Response) error {
			res.Header.Del("Set-Cookie")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.Logger.Warning("Dev proxy %s failed: %v", r.URL.Path, err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}

// -----------------------------------------------------------------------------

// Handlers maps each prefix to its proxy, ready to mount on a router.
func (p *Proxy) Handlers() map[string]http.Handler {
	out := make(map[string]http.Handler, len(p.handlers))
	for k, v := range p.handlers {
		out[k] = v
	}
	return out
}

// ServeHTTP dispatches on the longest matching prefix.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	best := ""
	for prefix := range p.handlers {
		if (r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/")) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		http.NotFound(w, r)
		return
	}
	p.handlers[best].ServeHTTP(w, r)
}
