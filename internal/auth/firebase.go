package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/grayola/task-manager/config"
	"github.com/grayola/task-manager/internal/apperr"
)

// FirebaseProvider implements IdentityProvider on Firebase Authentication.
// The Admin SDK covers user management and token checks; password sign-in
// goes through the Identity Toolkit API with the project's web API key.
type FirebaseProvider struct {
	client  *fbauth.Client
	toolkit *identitytoolkit.Service
}

var _ IdentityProvider = (*FirebaseProvider)(nil)

// InitializeFirebase initializes the Firebase Admin SDK and the Identity Toolkit client.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*FirebaseProvider, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY is required")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}

	return &FirebaseProvider{client: authClient, toolkit: toolkit}, nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", apperr.Conflict("user already registered", err)
		}
		return "", apperr.Auth("sign up failed", err)
	}
	return rec.UID, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := p.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, apperr.Auth("invalid login credentials", err)
	}
	return &Credentials{
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.LocalId,
	}, nil
}

func (p *FirebaseProvider) SignOut(ctx context.Context, userID string) error {
	if err := p.client.RevokeRefreshTokens(ctx, userID); err != nil {
		return apperr.Auth("sign out failed", err)
	}
	return nil
}

// CreateSessionCookie requires ttl between 5 minutes and 2 weeks.
func (p *FirebaseProvider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	cookie, err := p.client.SessionCookie(ctx, idToken, ttl)
	if err != nil {
		return "", apperr.Auth("create session failed", err)
	}
	return cookie, nil
}

// VerifyIDToken also rejects tokens issued before the last SignOut.
func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.Auth("missing session", nil)
	}
	decoded, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return "", apperr.Auth("invalid session", err)
	}
	return decoded.UID, nil
}

func (p *FirebaseProvider) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return "", apperr.Auth("missing session", nil)
	}
	decoded, err := p.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return "", apperr.Auth("invalid session", err)
	}
	return decoded.UID, nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, userID string) error {
	if err := p.client.DeleteUser(ctx, userID); err != nil {
		return apperr.Auth("delete user failed", err)
	}
	return nil
}
