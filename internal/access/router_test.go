package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grayola/task-manager/internal/auth"
	"github.com/grayola/task-manager/internal/auth/domain"
)

// tokens are "tok-<role>"; "tok-broken" simulates a store failure.
type stubResolver struct {
	calls int
}

func (s *stubResolver) ResolveCaller(_ context.Context, token domain.SessionToken) (domain.Caller, error) {
	s.calls++
	switch token.Value {
	case "tok-client":
		return domain.Caller{UserID: "u-c", Role: domain.RoleClient}, nil
	case "tok-project_manager":
		return domain.Caller{UserID: "u-pm", Role: domain.RoleProjectManager}, nil
	case "tok-designer":
		return domain.Caller{UserID: "u-d", Role: domain.RoleDesigner}, nil
	case "tok-admin":
		return domain.Caller{UserID: "u-x", Role: "admin"}, nil
	case "tok-broken":
		return domain.Caller{}, errors.New("profile store unavailable")
	}
	return domain.Caller{}, errors.New("invalid session")
}

var roles = []domain.Role{domain.RoleClient, domain.RoleProjectManager, domain.RoleDesigner}

func TestDecide_WrongDashboardRedirectsToOwn(t *testing.T) {
	r := NewRouter(&stubResolver{})
	paths := []string{
		"/dashboard",
		"/dashboard/",
		"/dashboard/client",
		"/dashboard/projectManager",
		"/dashboard/designer",
		"/dashboard/client/projects/42",
		"/dashboard/admin",
	}

	for _, role := range roles {
		for _, p := range paths {
			d := r.Decide(context.Background(), p, domain.CookieToken("tok-"+string(role)))
			if segment(cleanPath(p)) == role.DashboardSegment() {
				assert.True(t, d.Allowed(), "%s on %s", role, p)
				require.NotNil(t, d.Caller)
				assert.Equal(t, role, d.Caller.Role)
				continue
			}
			assert.Equal(t, role.DashboardPath(), d.Redirect, "%s on %s", role, p)
		}
	}
}

func TestDecide_UnauthenticatedDashboardRedirectsToLogin(t *testing.T) {
	r := NewRouter(&stubResolver{})
	for _, tok := range []string{"", "expired", "tok-broken", "tok-admin"} {
		for _, p := range []string{"/dashboard", "/dashboard/client", "/dashboard/designer/x"} {
			d := r.Decide(context.Background(), p, domain.CookieToken(tok))
			assert.Equal(t, LoginPath, d.Redirect, "token %q path %s", tok, p)
			assert.Nil(t, d.Caller)
		}
	}
}

func TestDecide_AuthPages(t *testing.T) {
	r := NewRouter(&stubResolver{})

	for _, role := range roles {
		for _, p := range []string{LoginPath, RegisterPath, "/login/"} {
			d := r.Decide(context.Background(), p, domain.CookieToken("tok-"+string(role)))
			assert.Equal(t, role.DashboardPath(), d.Redirect, "%s on %s", role, p)
		}
	}

	for _, tok := range []string{"", "expired", "tok-broken"} {
		d := r.Decide(context.Background(), LoginPath, domain.CookieToken(tok))
		assert.True(t, d.Allowed(), "no redirect loop with token %q", tok)
	}
}

func TestDecide_RootAndPublic(t *testing.T) {
	resolver := &stubResolver{}
	r := NewRouter(resolver)

	for _, tok := range []string{"", "tok-client", "tok-designer"} {
		d := r.Decide(context.Background(), "/", domain.CookieToken(tok))
		assert.Equal(t, LoginPath, d.Redirect, "token %q", tok)
	}

	resolver.calls = 0
	for _, p := range []string{"/health", "/about", "/dashboards"} {
		d := r.Decide(context.Background(), p, domain.CookieToken("tok-client"))
		assert.True(t, d.Allowed(), p)
	}
	assert.Zero(t, resolver.calls, "public paths do not resolve the session")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Middleware(NewRouter(&stubResolver{}), "session", zap.NewNop()))
	engine.GET("/dashboard/:segment", func(c *gin.Context) {
		caller, _ := auth.CallerFrom(c)
		c.String(http.StatusOK, fmt.Sprintf("%s:%s", c.Param("segment"), caller.UserID))
	})
	engine.GET("/login", func(c *gin.Context) { c.String(http.StatusOK, "login") })

	cases := []struct {
		path, cookie string
		code         int
		location     string
		body         string
	}{
		{"/dashboard/client", "", http.StatusTemporaryRedirect, "/login", ""},
		{"/dashboard/client", "tok-designer", http.StatusTemporaryRedirect, "/dashboard/designer", ""},
		{"/dashboard/designer", "tok-designer", http.StatusOK, "", "designer:u-d"},
		{"/login", "tok-project_manager", http.StatusTemporaryRedirect, "/dashboard/projectManager", ""},
		{"/login", "", http.StatusOK, "", "login"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.cookie != "" {
			req.AddCookie(&http.Cookie{Name: "session", Value: tc.cookie})
		}
		engine.ServeHTTP(w, req)

		assert.Equal(t, tc.code, w.Code, tc.path)
		assert.Equal(t, tc.location, w.Header().Get("Location"), tc.path)
		if tc.body != "" {
			assert.Equal(t, tc.body, w.Body.String())
		}
	}
}
