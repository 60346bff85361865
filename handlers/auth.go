package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/pkg/middleware"
)

// SessionSwitcher toggles between the demo user and the guest view.
type SessionSwitcher interface {
	SignIn(ctx context.Context) (sessions.User, error)
	SignOut(ctx context.Context) error
}

// SessionHandler holds dependencies
type SessionHandler struct {
	sessions SessionSwitcher
}

func NewSessionHandler(s SessionSwitcher) *SessionHandler {
	return &SessionHandler{sessions: s}
}

// Register routes under /session
func (h *SessionHandler) Register(rg gin.IRouter) {
	s := rg.Group("/session")
	s.POST("/signin", h.SignIn)
	s.POST("/signout", h.SignOut)
}

// SignIn stores the demo user as the current session.
func (h *SessionHandler) SignIn(c *gin.Context) {
	u, err := h.sessions.SignIn(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	middleware.Log(c).Infof("signed in as %s", u.Username)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// SignOut clears the session, leaving the visitor as a guest.
func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context()); err != nil {
		renderError(c, err)
		return
	}
	middleware.Log(c).Infof("signed out")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}
