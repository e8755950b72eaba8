package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apihttp "github.com/grayola/task-manager/internal/api/http"
	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth"
	"github.com/grayola/task-manager/internal/auth/domain"
)

// CallerResolver maps a session token to the caller.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token domain.SessionToken) (domain.Caller, error)
}

// ExtractToken reads the session token from the Authorization header,
// falling back to the session cookie. The zero value means no token.
func ExtractToken(c *gin.Context, cookieName string) domain.SessionToken {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(h[len("Bearer "):]); tok != "" {
			return domain.BearerToken(tok)
		}
	}
	if cookieName == "" {
		return domain.SessionToken{}
	}
	tok, err := c.Cookie(cookieName)
	if err != nil || strings.TrimSpace(tok) == "" {
		return domain.SessionToken{}
	}
	return domain.CookieToken(strings.TrimSpace(tok))
}

// RequireCaller rejects requests without a valid session and stores the
// resolved caller for the handlers.
func RequireCaller(resolver CallerResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, cookieName)
		if token.Value == "" {
			apihttp.WriteError(c, apperr.Auth("missing session", nil))
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			apihttp.WriteError(c, err)
			return
		}

		auth.SetCaller(c, caller)
		c.Next()
	}
}
