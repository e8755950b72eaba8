// Package access decides, for every page navigation, whether the request
// proceeds or is redirected based on the session and the caller's role.
package access

import (
	"context"
	"strings"

	"github.com/grayola/task-manager/internal/auth/domain"
)

const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
)

// CallerResolver maps a session token to the caller. Any error counts as
// no valid session.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token domain.SessionToken) (domain.Caller, error)
}

// Decision is the outcome for one request. An empty Redirect means allow.
type Decision struct {
	Redirect string
	Caller   *domain.Caller
	// Reason is a short label for logs.
	Reason string
}

func (d Decision) Allowed() bool { return d.Redirect == "" }

type Router struct {
	resolver CallerResolver
}

func NewRouter(resolver CallerResolver) *Router {
	return &Router{resolver: resolver}
}

// Decide applies the routing rules in order; the first that matches wins.
// It performs no writes.
func (r *Router) Decide(ctx context.Context, path string, token domain.SessionToken) Decision {
	path = cleanPath(path)
	onAuthPage := path == LoginPath || path == RegisterPath
	underDashboard := isDashboard(path)

	var caller *domain.Caller
	if token.Value != "" && (onAuthPage || underDashboard || path == "/") {
		if c, err := r.resolver.ResolveCaller(ctx, token); err == nil && c.Role.Valid() {
			caller = &c
		}
	}

	switch {
	case caller == nil && underDashboard:
		return Decision{Redirect: LoginPath, Reason: "no_session"}
	case caller != nil && onAuthPage:
		return Decision{Redirect: caller.Role.DashboardPath(), Caller: caller, Reason: "already_signed_in"}
	case caller != nil && underDashboard:
		if segment(path) != caller.Role.DashboardSegment() {
			return Decision{Redirect: caller.Role.DashboardPath(), Caller: caller, Reason: "wrong_dashboard"}
		}
		return Decision{Caller: caller, Reason: "dashboard"}
	case path == "/":
		return Decision{Redirect: LoginPath, Caller: caller, Reason: "root"}
	}
	return Decision{Caller: caller, Reason: "public"}
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}

func isDashboard(path string) bool {
	return path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/")
}

// segment returns the path segment after /dashboard, or "" for /dashboard itself.
func segment(path string) string {
	rest := strings.TrimPrefix(path, DashboardPath)
	rest = strings.TrimPrefix(rest, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
