package handler

import (
	"context"  // provides context with cancellation for DB calls
	"net/http" // HTTP status codes and primitives
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/mercado-storefront/internal/middleware" // session cookie name and user id accessor
	"github.com/iliyamo/mercado-storefront/internal/model"      // public user shape
	"github.com/iliyamo/mercado-storefront/internal/service"    // session manager and error kinds
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Sessions     *service.SessionManager
	SecureCookie bool // set the Secure attribute (behind HTTPS in prod)
}

func NewAuthHandler(s *service.SessionManager, secureCookie bool) *AuthHandler {
	return &AuthHandler{Sessions: s, SecureCookie: secureCookie}
}

// ----- DTOs -----

// registerReq accepts the English field names and the Portuguese ones the
// storefront pages send.
type registerReq struct {
	Name     string `json:"name"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Senha    string `json:"senha"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Senha    string `json:"senha"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Register: create a user. No session is opened; clients log in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Sessions.Register(ctx, firstNonEmpty(req.Name, req.Nome), req.Email, firstNonEmpty(req.Password, req.Senha))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "ok",
		"message": "user registered",
		"user":    u.Public(),
	})
}

// Login: verify credentials, open a session and set the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return writeErrorWith(c, &service.Error{Kind: service.KindInvalidInput, Message: "invalid body"},
			echo.Map{"authenticated": false})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, u, err := h.Sessions.Login(ctx, req.Email, firstNonEmpty(req.Password, req.Senha))
	if err != nil {
		return writeErrorWith(c, err, echo.Map{"authenticated": false})
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(h.Sessions.TTL() / time.Second),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user":          u.Public(),
	})
}

// Logout: delete the current session and expire the cookie (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.SessionID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Logout(ctx, token); err != nil {
		return writeError(c, err)
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // emitted as Max-Age=0
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "message": "logged out"})
}

// Me: the user owning the current session (protected).
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return writeError(c, &service.Error{Kind: service.KindUnauthenticated, Message: "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Sessions.UserByID(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "user": u.Public()})
}

// Users: every registered user without credentials (protected).
func (h *AuthHandler) Users(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Sessions.Users(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]model.PublicUser, 0, len(list))
	for _, u := range list {
		out = append(out, u.Public())
	}
	return c.JSON(http.StatusOK, out)
}
