package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"authz-service/internal/authz"
	"authz-service/internal/directory"
	"authz-service/internal/middleware"
	"authz-service/internal/services"
)

// AccessContextSource loads the route-resolution attributes of an actor.
// Satisfied by directory.GormDirectory.
type AccessContextSource interface {
	AccessContextOf(ctx context.Context, employeeID uuid.UUID) (authz.AccessContext, error)
}

// AccessHandler exposes the permission and route checks the dashboard uses
// to decide what to render.
type AccessHandler struct {
	access     *services.AccessService
	directory  AccessContextSource
	tablesPath string
}

// NewAccessHandler creates a new AccessHandler. tablesPath is the file the
// reload endpoint re-reads; empty disables reloading.
func NewAccessHandler(access *services.AccessService, dir AccessContextSource, tablesPath string) *AccessHandler {
	return &AccessHandler{access: access, directory: dir, tablesPath: tablesPath}
}

type canPerformInput struct {
	Module string `json:"module" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// CanPerform answers whether the authenticated actor may perform an action
// on a module.
func (h *AccessHandler) CanPerform(c *gin.Context) {
	role, ok := middleware.ActorRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var input canPerformInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := h.access.CanPerform(role, authz.Module(input.Module), authz.Action(input.Action))
	c.JSON(http.StatusOK, gin.H{
		"role":    role,
		"module":  input.Module,
		"action":  input.Action,
		"allowed": allowed,
	})
}

type canAccessRouteInput struct {
	Route string `json:"route" binding:"required"`
}

// CanAccessRoute answers whether the authenticated actor may reach a
// dashboard route. The actor's contract type comes from the directory, not
// the request, so callers cannot claim techno access they do not have.
func (h *AccessHandler) CanAccessRoute(c *gin.Context) {
	role, ok := middleware.ActorRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var input canAccessRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ac := authz.AccessContext{}
	if actorID, found := middleware.ActorID(c); found && h.directory != nil {
		loaded, err := h.directory.AccessContextOf(c.Request.Context(), actorID)
		switch {
		case err == nil:
			ac = loaded
		case errors.Is(err, directory.ErrEmployeeNotFound):
			// Unknown or inactive actors keep the zero context and fall
			// through to the deny-by-default route rules.
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "directory_unavailable"})
			return
		}
	}

	allowed := h.access.CanAccessRoute(role, input.Route, ac)
	c.JSON(http.StatusOK, gin.H{
		"role":    role,
		"route":   input.Route,
		"allowed": allowed,
	})
}

// ReloadTables re-reads the declarative access tables from disk. The route
// is admin-only, guarded by middleware.RequireRole.
func (h *AccessHandler) ReloadTables(c *gin.Context) {
	if h.tablesPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no access tables file configured"})
		return
	}

	if err := h.access.Reload(h.tablesPath); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "access tables reloaded", "path": h.tablesPath})
}
