package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the routes that need no session.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/offerings", h.offerings)
}

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.create)
	projects.GET("", h.list)
	projects.GET("/:id", h.get)
	projects.PATCH("/:id", h.update)
	projects.DELETE("/:id", h.delete)
	projects.POST("/:id/assign", h.assign)
	projects.PATCH("/:id/status", h.updateStatus)
	projects.POST("/:id/files", h.attachFiles)
	projects.GET("/:id/files/url", h.signedURL)

	rg.GET("/designers", h.designers)
}
