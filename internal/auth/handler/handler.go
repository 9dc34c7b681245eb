package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/auth"
	"github.com/fluxynet/blog/internal/logger"
	"github.com/fluxynet/blog/internal/session"
)

type Handler struct {
	auth     auth.Authenticator
	sessions session.Manager
	baseURL  string
	cookie   session.CookieOptions
}

// NewHandler wires the login endpoints. After a successful login the browser
// is sent back to baseURL with the session cookie described by cookie.
func NewHandler(
	authenticator auth.Authenticator,
	sessions session.Manager,
	baseURL string,
	cookie session.CookieOptions,
) *Handler {
	return &Handler{
		auth:     authenticator,
		sessions: sessions,
		baseURL:  baseURL,
		cookie:   cookie,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/auth/login", h.login)
	r.GET(auth.CallbackPath, h.callback)
	r.GET("/auth/logout", h.logout)
	r.GET("/auth/me", h.me)
}

func (h *Handler) login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.auth.StartLogin())
}

func (h *Handler) callback(c *gin.Context) {
	// the user declined, or GitHub refused the app
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"error": errParam,
			"desc":  c.Query("error_description"),
		})
		apperr.Respond(c, apperr.PermissionDenied(fmt.Sprintf("%s (%s)", c.Query("error_description"), errParam)))
		return
	}

	code := c.Query("code")
	if code == "" {
		apperr.Respond(c, apperr.Serialization("reading callback", errors.New("missing code")))
		return
	}

	s, err := h.auth.Login(c.Request.Context(), code)
	if err != nil {
		logger.Warn("login failed", map[string]any{
			"error": err.Error(),
			"ip":    c.ClientIP(),
		})
		apperr.Respond(c, err)
		return
	}

	session.SetCookie(c.Writer, s.Token, h.cookie)
	c.Redirect(http.StatusFound, h.baseURL)
}

func (h *Handler) logout(c *gin.Context) {
	token, ok := session.TokenFromRequest(c.Request, h.cookie.Name)
	if ok {
		if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
			logger.Error("logout failed", map[string]any{"error": err.Error()})
			apperr.Respond(c, err)
			return
		}

		logger.Info("logout", map[string]any{
			"token": logger.Redact(token),
			"ip":    c.ClientIP(),
		})
	}

	session.ClearCookie(c.Writer, h.cookie)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) me(c *gin.Context) {
	token, ok := session.TokenFromRequest(c.Request, h.cookie.Name)
	if !ok {
		apperr.RespondStatus(c, http.StatusUnauthorized, apperr.PermissionDenied("no session"))
		return
	}

	user, err := h.sessions.Session(c.Request.Context(), token)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
