package access

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/grayola/task-manager/internal/auth"
	authmw "github.com/grayola/task-manager/internal/auth/middleware"
	"github.com/grayola/task-manager/internal/logger"
)

// Middleware gates page routes with the router. Redirects are sent as 307;
// allowed requests carry the resolved caller, if any.
func Middleware(r *Router, cookieName string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := authmw.ExtractToken(c, cookieName)
		d := r.Decide(c.Request.Context(), c.Request.URL.Path, token)

		logger.FromContext(c, log).Debug("access decision",
			zap.String("reason", d.Reason),
			zap.String("redirect", d.Redirect),
			zap.Bool("has_session", d.Caller != nil),
		)

		if !d.Allowed() {
			c.Redirect(http.StatusTemporaryRedirect, d.Redirect)
			c.Abort()
			return
		}
		if d.Caller != nil {
			auth.SetCaller(c, *d.Caller)
		}
		c.Next()
	}
}
