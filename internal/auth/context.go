package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/grayola/task-manager/internal/auth/domain"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "user_role"
)

// SetCaller stores the resolved caller in the gin context.
func SetCaller(c *gin.Context, caller domain.Caller) {
	c.Set(CtxUserID, caller.UserID)
	c.Set(CtxRole, string(caller.Role))
}

// CallerFrom extracts the caller set by SetCaller.
func CallerFrom(c *gin.Context) (domain.Caller, bool) {
	uid := c.GetString(CtxUserID)
	if uid == "" {
		return domain.Caller{}, false
	}
	return domain.Caller{UserID: uid, Role: domain.Role(c.GetString(CtxRole))}, true
}
