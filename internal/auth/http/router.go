package http

import "github.com/gin-gonic/gin"

// RegisterPublic mounts the routes that need no session.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/login", h.Login)
}

// RegisterProtected mounts the routes that run behind RequireCaller.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/profile", h.GetProfile)
	rg.PATCH("/profiles/:id/role", h.ChangeRole)
}
