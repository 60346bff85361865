package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/collections/internal/collection"
	"github.com/gogotex/collections/internal/collection/service"
	"github.com/gogotex/collections/pkg/middleware"
)

// RegisterCollectionRoutes mounts the JSON API. The session middleware must
// already be installed on r.
func RegisterCollectionRoutes(r gin.IRouter, svc service.Service) {
	api := r.Group("/api")

	api.GET("/session", func(c *gin.Context) {
		l := middleware.CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"loggedIn": l.LoggedIn(), "user": l.User})
	})

	api.GET("/collections", func(c *gin.Context) {
		q := service.ParseQuery(c.Query("tab"), c.Query("q"), c.Query("sort"))
		page, err := svc.Dashboard(c.Request.Context(), q, middleware.CurrentUser(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	})

	api.GET("/collections/:id", func(c *gin.Context) {
		col, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, col)
	})

	authed := api.Group("", middleware.RequireUser())

	authed.POST("/collections", func(c *gin.Context) {
		var req collection.Draft
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		col, err := svc.Save(c.Request.Context(), "", req, middleware.CurrentUser(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, col)
	})

	authed.PUT("/collections/:id", func(c *gin.Context) {
		var req collection.Draft
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		col, err := svc.Save(c.Request.Context(), c.Param("id"), req, middleware.CurrentUser(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, col)
	})

	authed.DELETE("/collections/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// writeError maps service errors to status codes.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		middleware.Log(c).Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	}
}
