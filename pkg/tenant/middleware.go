package tenant

import (
	"encoding/json"
	"net/http"
	"strings"
)

// IdentityFunc extracts the authenticated caller from the request, or nil
// for anonymous requests. Authentication is the web layer's concern.
type IdentityFunc func(r *http.Request) *Identity

// ErrorHandler renders a rejected resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	header       string
	errorHandler ErrorHandler
	skipPaths    []string
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

// WithTenantHeader overrides the explicit-selection header name.
func WithTenantHeader(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if name != "" {
			c.header = name
		}
	}
}

// WithErrorHandler overrides how rejected resolutions are rendered.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths disables resolution for request paths with these prefixes,
// e.g. health checks and static assets.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// Middleware resolves the tenant for every request and attaches the result
// to the request context. Requests that resolve to "no tenant" pass through
// without a context; routes that require one must also be wrapped in
// RequireTenant.
func Middleware(resolver *Resolver, identity IdentityFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		header:       DefaultTenantHeader,
		errorHandler: DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			var id *Identity
			if identity != nil {
				id = identity(r)
			}

			meta := RequestMeta{
				TenantID: strings.TrimSpace(r.Header.Get(cfg.header)),
				Host:     r.Host,
				Identity: id,
			}

			tctx, err := resolver.Resolve(r.Context(), meta)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if tctx == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tctx)))
		})
	}
}

// RequireTenant rejects requests that reached a tenant-required route
// without a resolved tenant context. Unrestricted contexts pass: the routes
// behind this guard still go through the isolation enforcer, which handles
// the unrestricted case itself.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultErrorHandler renders resolution failures as JSON. All resolution
// rejections are access denials; only malformed identifiers are client
// errors.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	code := ErrorCode(err)
	status := http.StatusForbidden
	switch code {
	case CodeInvalidIdentifier:
		status = http.StatusBadRequest
	case "":
		code = "internal_error"
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
