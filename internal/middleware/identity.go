package middleware

// Accessors for what SessionAuth stores on the echo.Context.

import "github.com/labstack/echo/v4"

const (
	ctxUserID    = "user_id"
	ctxSessionID = "session_id"
)

// UserID returns the authenticated user id set by SessionAuth.
func UserID(c echo.Context) (int64, bool) {
	uid, ok := c.Get(ctxUserID).(int64)
	return uid, ok && uid > 0
}

// SessionID returns the validated session id, falling back to the raw
// cookie on routes the gate lets through without a check.
func SessionID(c echo.Context) string {
	if sid, ok := c.Get(ctxSessionID).(string); ok && sid != "" {
		return sid
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}
