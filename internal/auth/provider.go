package auth

import (
	"context"
	"time"
)

// Credentials are returned by a successful password sign-in.
type Credentials struct {
	IDToken      string
	RefreshToken string
	UserID       string
}

// IdentityProvider is the external authentication service.
type IdentityProvider interface {
	// SignUp creates an identity and returns its user id.
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (*Credentials, error)
	// SignOut revokes every session of the user.
	SignOut(ctx context.Context, userID string) error
	// CreateSessionCookie exchanges a fresh ID token for a server session
	// that stays valid for ttl.
	CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	// VerifyIDToken resolves a bearer ID token to a user id.
	VerifyIDToken(ctx context.Context, token string) (string, error)
	// VerifySessionCookie resolves a server session to a user id.
	VerifySessionCookie(ctx context.Context, cookie string) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}
