package domain

import (
	"fmt"
	"time"
)

// Role is the access role stored on a profile.
type Role string

const (
	RoleClient         Role = "client"
	RoleProjectManager Role = "project_manager"
	RoleDesigner       Role = "designer"
)

// InitialPointsBalance is credited to every newly registered profile.
const InitialPointsBalance = 100

var dashboardSegments = map[Role]string{
	RoleClient:         "client",
	RoleProjectManager: "projectManager",
	RoleDesigner:       "designer",
}

// ParseRole validates a stored or requested role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := dashboardSegments[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := dashboardSegments[r]
	return ok
}

// DashboardSegment is the path segment of the role's dashboard under /dashboard.
func (r Role) DashboardSegment() string {
	return dashboardSegments[r]
}

// DashboardPath is the absolute dashboard path for the role.
func (r Role) DashboardPath() string {
	return "/dashboard/" + r.DashboardSegment()
}

// Profile is a user's role and credit balance record.
type Profile struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Role          Role      `json:"role" db:"role"`
	PointsBalance int       `json:"points_balance" db:"points_balance"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Caller is the authenticated identity of the current request.
type Caller struct {
	UserID string
	Role   Role
}

func (c Caller) Is(role Role) bool { return c.Role == role }

// RegisterRequest represents data needed to create an account.
type RegisterRequest struct {
	Email    string
	Password string
	Role     Role
}

// SessionToken is the credential a request presents. Cookie marks a value
// read from the session cookie, which holds a server session rather than
// an ID token.
type SessionToken struct {
	Value  string
	Cookie bool
}

func BearerToken(v string) SessionToken { return SessionToken{Value: v} }

func CookieToken(v string) SessionToken { return SessionToken{Value: v, Cookie: true} }

// Session is the result of a successful sign-in. Token is a short-lived ID
// token for bearer use; Cookie is the server session stored in the cookie.
type Session struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Cookie       string `json:"-"`
	UserID       string `json:"user_id"`
	Role         Role   `json:"role"`
	Dashboard    string `json:"dashboard"`
}
