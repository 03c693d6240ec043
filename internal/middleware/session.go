package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // request context handed to the session validator
	"net/http" // HTTP status codes for responses
	"path"     // dot-segment cleaning of request paths
	"strings"  // prefix checks on the request path

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
)

// SessionCookie is the name of the cookie carrying the opaque session id.
const SessionCookie = "session_id"

// LoginPath is where browsers are sent when they reach a protected page
// without a session.
const LoginPath = "/login"

// SessionValidator resolves a session id to its user.  Implementations must
// report false on any lookup failure.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (int64, bool)
}

// publicExact and publicPrefixes make up the allow-list of routes that skip
// the session check.
var publicExact = map[string]bool{
	"/health":       true,
	"/api/login":    true,
	"/api/register": true,
	LoginPath:       true,
	"/api/products": true,
	"/api/cart":     true,
	"/api/checkout": true,
}

var publicPrefixes = []string{"/api/cart/"}

// IsPublicPath reports whether p may be served without a session.  The
// path is cleaned first so dot segments cannot climb out of a public prefix.
func IsPublicPath(p string) bool {
	p = path.Clean("/" + p)
	if publicExact[p] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(p+"/", prefix) && p+"/" != prefix {
			return true
		}
	}
	return false
}

// CanonicalPath reports whether p is already in the form the router and
// the static file server resolve it to: rooted, with no dot segments and
// no repeated slashes.  A single trailing slash is allowed.
func CanonicalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return path.Clean(p) == p
}

// SessionAuth returns an Echo middleware that gates every non-public route
// on a valid session cookie.  On success the owning user id is stored under
// "user_id" (int64) and the raw session id under "session_id" so handlers
// such as logout can reach it.  Failures answer API paths with a 401 JSON
// body and redirect everything else to the login page.
func SessionAuth(v SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			if !CanonicalPath(reqPath) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":   "InvalidInput",
					"message": "invalid request path",
					"code":    http.StatusBadRequest,
				})
			}
			if IsPublicPath(reqPath) {
				return next(c)
			}

			if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
				if uid, ok := v.Validate(c.Request().Context(), ck.Value); ok {
					c.Set(ctxUserID, uid)
					c.Set(ctxSessionID, ck.Value)
					return next(c)
				}
			}

			if reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "Unauthenticated",
					"message": "authentication required",
					"code":    http.StatusUnauthorized,
				})
			}
			return c.Redirect(http.StatusFound, LoginPath)
		}
	}
}
