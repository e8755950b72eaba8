package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apihttp "github.com/grayola/task-manager/internal/api/http"
	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth"
	"github.com/grayola/task-manager/internal/auth/domain"
)

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}

	profile, err := h.accounts.Register(c.Request.Context(), domain.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "profile": profile})
}

// Login signs in and stores the server session in the cookie. The ID token
// is also returned for API clients that send it as a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}

	sess, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sess.Cookie, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess})
}

func (h *Handler) Logout(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		apihttp.WriteError(c, apperr.Auth("user not authenticated", nil))
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), caller); err != nil {
		apihttp.WriteError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		apihttp.WriteError(c, apperr.Auth("user not authenticated", nil))
		return
	}

	profile, err := h.accounts.GetProfile(c.Request.Context(), caller)
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}

func (h *Handler) ChangeRole(c *gin.Context) {
	caller, ok := auth.CallerFrom(c)
	if !ok {
		apihttp.WriteError(c, apperr.Auth("user not authenticated", nil))
		return
	}

	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apihttp.BadRequest(c, err)
		return
	}

	profile, err := h.accounts.ChangeRole(c.Request.Context(), caller, c.Param("id"), domain.Role(req.Role))
	if err != nil {
		apihttp.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}
