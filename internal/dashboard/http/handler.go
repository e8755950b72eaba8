// Package http serves the page routes. Every handler here runs behind the
// access middleware, so a dashboard handler only ever sees a caller whose
// role matches the requested dashboard.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apihttp "github.com/grayola/task-manager/internal/api/http"
	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth"
	authdomain "github.com/grayola/task-manager/internal/auth/domain"
	"github.com/grayola/task-manager/internal/projects/domain"
)

type ProfileReader interface {
	GetProfile(ctx context.Context, caller authdomain.Caller) (*authdomain.Profile, error)
}

type ProjectReader interface {
	List(ctx context.Context, caller authdomain.Caller) ([]domain.Project, error)
	Designers(ctx context.Context, caller authdomain.Caller) ([]domain.DesignerWorkload, error)
}

type Handler struct {
	profiles ProfileReader
	projects ProjectReader
}

func New(profiles ProfileReader, projects ProjectReader) *Handler {
	return &Handler{profiles: profiles, projects: projects}
}

// Register mounts the page routes on a group that already runs the access
// middleware.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/", h.page("root"))
	rg.GET("/login", h.page("login"))
	rg.GET("/register", h.page("register"))
	rg.GET("/dashboard", h.page("dashboard"))
	rg.GET("/dashboard/:segment", h.dashboard)
	rg.GET("/dashboard/:segment/*rest", h.dashboard)
}

func (h *Handler) page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "page": name})
	}
}

func (h *Handler) dashboard(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		apihttp.WriteError(c, apperr.Auth("user not authenticated", nil))
		return
	}
	ctx := c.Request.Context()

	view := gin.H{"ok": true, "page": "dashboard", "role": caller.Role}
	switch caller.Role {
	case authdomain.RoleClient:
		profile, err := h.profiles.GetProfile(ctx, caller)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}
		projects, err := h.projects.List(ctx, caller)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}
		view["profile"] = profile
		view["projects"] = projects
		view["offerings"] = domain.Catalog()

	case authdomain.RoleDesigner:
		projects, err := h.projects.List(ctx, caller)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}
		view["projects"] = projects

	case authdomain.RoleProjectManager:
		projects, err := h.projects.List(ctx, caller)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}
		designers, err := h.projects.Designers(ctx, caller)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}
		view["projects"] = projects
		view["designers"] = designers

	default:
		apihttp.WriteError(c, apperr.Forbidden("unknown role"))
		return
	}

	c.JSON(http.StatusOK, view)
}
