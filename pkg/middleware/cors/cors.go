package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// sessionHeader lets browser clients forward an Odoo session id.
const sessionHeader = "X-Openerp-Session-Id"

var (
	defaultMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	defaultHeaders = []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID", sessionHeader}
	exposedHeaders = []string{"Content-Disposition", "X-Request-ID"}
)

// Options configures the middleware. Zero values fall back to the gateway defaults.
type Options struct {
	Origins []string
	Methods []string
	MaxAge  time.Duration
}

// New returns a CORS middleware allowing the given origins. An empty list
// allows any origin.
func New(allowedOrigins []string) gin.HandlerFunc {
	return WithOptions(Options{Origins: allowedOrigins})
}

// WithOptions builds the middleware from explicit options. Origins may use a
// leading "*." to match any subdomain.
func WithOptions(opts Options) gin.HandlerFunc {
	methods := opts.Methods
	if len(methods) == 0 {
		methods = defaultMethods
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	match := originMatcher(opts.Origins)

	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(defaultHeaders, ", ")
	exposeHeaders := strings.Join(exposedHeaders, ", ")
	maxAgeSeconds := strconv.Itoa(int(maxAge.Seconds()))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if origin == "" || !match(origin) {
			if c.Request.Method == http.MethodOptions && origin != "" {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Expose-Headers", exposeHeaders)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", maxAgeSeconds)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originMatcher(origins []string) func(string) bool {
	if len(origins) == 0 {
		return func(string) bool { return true }
	}
	exact := make(map[string]struct{}, len(origins))
	var suffixes []string
	for _, origin := range origins {
		origin = strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
		switch {
		case origin == "*":
			return func(string) bool { return true }
		case strings.Contains(origin, "://*."):
			scheme, host, _ := strings.Cut(origin, "://*")
			suffixes = append(suffixes, scheme+"://|"+host)
		case origin != "":
			exact[origin] = struct{}{}
		}
	}
	return func(origin string) bool {
		origin = strings.ToLower(strings.TrimRight(origin, "/"))
		if _, ok := exact[origin]; ok {
			return true
		}
		for _, s := range suffixes {
			scheme, host, _ := strings.Cut(s, "|")
			if strings.HasPrefix(origin, scheme) && strings.HasSuffix(origin, host) && len(origin) > len(scheme)+len(host) {
				return true
			}
		}
		return false
	}
}
