package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/internal/collection/service"
	"github.com/gogotex/collections/internal/sessions"
	"github.com/gogotex/collections/pkg/middleware"
)

// PageHandler serves the dashboard and editor pages.
type PageHandler struct {
	svc service.Service
}

func NewPageHandler(svc service.Service) *PageHandler {
	return &PageHandler{svc: svc}
}

// Register mounts the HTML routes. SessionUser must already be installed on r.
func (h *PageHandler) Register(r gin.IRouter) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	r.GET("/dashboard", h.Dashboard)

	authed := r.Group("", requireUserPage)
	authed.GET("/manage-collection", h.OpenEditor)
	authed.POST("/manage-collection", h.SubmitEditor)
	authed.POST("/collections/:id/delete", h.Delete)
}

// requireUserPage sends guests back to the dashboard.
func requireUserPage(c *gin.Context) {
	if middleware.CurrentUser(c) == nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		c.Abort()
		return
	}
	c.Next()
}

func dashboardURL(q service.Query) string {
	if enc := q.Values().Encode(); enc != "" {
		return "/dashboard?" + enc
	}
	return "/dashboard"
}

func navOf(c *gin.Context) sessions.Nav {
	return sessions.NavFor(middleware.CurrentSession(c))
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	q := service.ParseQuery(c.Query("tab"), c.Query("q"), c.Query("sort"))
	page, err := h.svc.Dashboard(c.Request.Context(), q, middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	all, mine := q, q
	all.Tab, mine.Tab = service.TabAll, service.TabMine
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":   "Dashboard",
		"Nav":     navOf(c),
		"Page":    page,
		"Tab":     string(q.Tab),
		"Search":  q.Search,
		"Sort":    string(q.Sort),
		"AllURL":  dashboardURL(all),
		"MineURL": dashboardURL(mine),
	})
}

func renderEditor(c *gin.Context, status int, f service.Form) {
	c.HTML(status, "editor.html", gin.H{
		"Title": f.Heading,
		"Nav":   navOf(c),
		"Form":  f,
	})
}

func (h *PageHandler) OpenEditor(c *gin.Context) {
	f, err := h.svc.OpenEditor(c.Request.Context(), c.Query("id"), middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	renderEditor(c, http.StatusOK, f)
}

func (h *PageHandler) SubmitEditor(c *gin.Context) {
	version, _ := strconv.Atoi(c.PostForm("version"))
	in := service.EditorInput{
		Title:       c.PostForm("title"),
		Tag:         c.PostForm("tag"),
		Description: c.PostForm("description"),
		Version:     version,
	}
	_, f, err := h.svc.SubmitEditor(c.Request.Context(), c.PostForm("id"), in, middleware.CurrentUser(c))
	var verr *service.ValidationError
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/dashboard")
	case errors.As(err, &verr):
		renderEditor(c, http.StatusUnprocessableEntity, f)
	case errors.Is(err, service.ErrVersionConflict):
		f.Error = "This collection was changed elsewhere. Reload the page to edit the latest version."
		renderEditor(c, http.StatusConflict, f)
	default:
		renderError(c, err)
	}
}

func (h *PageHandler) Delete(c *gin.Context) {
	back := dashboardURL(service.ParseQuery(c.PostForm("tab"), c.PostForm("q"), c.PostForm("sort")))
	err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back)
}

// renderError maps service errors to an error page.
func renderError(c *gin.Context, err error) {
	status, title, msg := http.StatusInternalServerError, "Something went wrong", "The collection store is unavailable. Try again shortly."
	switch {
	case errors.Is(err, service.ErrNotFound):
		status, title, msg = http.StatusNotFound, "Not found", "That collection does not exist."
	case errors.Is(err, service.ErrForbidden):
		status, title, msg = http.StatusForbidden, "Not allowed", "You can only change your own collections."
	case errors.Is(err, service.ErrUnauthenticated):
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	default:
		middleware.Log(c).Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.HTML(status, "error.html", gin.H{"Title": title, "Message": msg, "Nav": navOf(c)})
}
