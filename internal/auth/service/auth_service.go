package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth"
	"github.com/grayola/task-manager/internal/auth/domain"
)

const minPasswordLength = 6

// ProfileStore is the persistence the account flows need.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.Profile, error)
}

// AttemptLimiter tracks failed sign-ins per email.
type AttemptLimiter interface {
	Allowed(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type AuthService struct {
	provider   auth.IdentityProvider
	profiles   ProfileStore
	attempts   AttemptLimiter
	sessionTTL time.Duration
	log        *zap.Logger
}

// NewAuthService builds the account flows. sessionTTL is the lifetime of
// the server session minted on login.
func NewAuthService(provider auth.IdentityProvider, profiles ProfileStore, attempts AttemptLimiter, sessionTTL time.Duration, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		provider:   provider,
		profiles:   profiles,
		attempts:   attempts,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// Register creates the identity and its profile. If the profile cannot be
// stored the identity is deleted again so the email can be reused.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Profile, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least 6 characters")
	}
	role := req.Role
	if role == "" {
		role = domain.RoleClient
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role")
	}

	uid, err := s.provider.SignUp(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:            uid,
		Email:         email,
		Role:          role,
		PointsBalance: domain.InitialPointsBalance,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if delErr := s.provider.DeleteUser(ctx, uid); delErr != nil {
			s.log.Error("failed to roll back identity after profile insert",
				zap.String("user_id", uid), zap.Error(delErr))
		}
		return nil, err
	}

	s.log.Info("account registered", zap.String("user_id", uid), zap.String("role", string(role)))
	return profile, nil
}

// Login signs in with email and password and returns the session together
// with the dashboard the caller lands on.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Validation("password is required")
	}

	ok, err := s.attempts.Allowed(ctx, email)
	if err != nil {
		s.log.Warn("login attempt limiter unavailable", zap.Error(err))
		ok = true
	}
	if !ok {
		return nil, apperr.New(apperr.KindRateLimited, "too many failed login attempts, try again later")
	}

	creds, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if recErr := s.attempts.RecordFailure(ctx, email); recErr != nil {
			s.log.Warn("failed to record login attempt", zap.Error(recErr))
		}
		return nil, err
	}
	if err := s.attempts.Reset(ctx, email); err != nil {
		s.log.Warn("failed to reset login attempts", zap.Error(err))
	}

	profile, err := s.profiles.GetByID(ctx, creds.UserID)
	if err != nil {
		return nil, err
	}
	role := effectiveRole(profile.Role)
	if !role.Valid() {
		return nil, apperr.Auth("profile has an unknown role", nil)
	}

	cookie, err := s.provider.CreateSessionCookie(ctx, creds.IDToken, s.sessionTTL)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		Token:        creds.IDToken,
		RefreshToken: creds.RefreshToken,
		Cookie:       cookie,
		UserID:       creds.UserID,
		Role:         role,
		Dashboard:    role.DashboardPath(),
	}, nil
}

// Logout revokes every session of the caller.
func (s *AuthService) Logout(ctx context.Context, caller domain.Caller) error {
	return s.provider.SignOut(ctx, caller.UserID)
}

func (s *AuthService) GetProfile(ctx context.Context, caller domain.Caller) (*domain.Profile, error) {
	return s.profiles.GetByID(ctx, caller.UserID)
}

// ChangeRole sets the role of another user's profile. Only project managers
// may do this, and never on their own profile.
func (s *AuthService) ChangeRole(ctx context.Context, caller domain.Caller, targetID string, role domain.Role) (*domain.Profile, error) {
	if !caller.Is(domain.RoleProjectManager) {
		return nil, apperr.Forbidden("only project managers can change roles")
	}
	if targetID == caller.UserID {
		return nil, apperr.Forbidden("cannot change your own role")
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role")
	}
	return s.profiles.UpdateRole(ctx, targetID, role)
}

// ResolveCaller maps a session token to the caller's id and role. Cookie
// values are checked as server sessions, bearer values as ID tokens. Any
// failure along the way is reported as an auth error.
func (s *AuthService) ResolveCaller(ctx context.Context, token domain.SessionToken) (domain.Caller, error) {
	var (
		uid string
		err error
	)
	if token.Cookie {
		uid, err = s.provider.VerifySessionCookie(ctx, token.Value)
	} else {
		uid, err = s.provider.VerifyIDToken(ctx, token.Value)
	}
	if err != nil {
		return domain.Caller{}, asAuth(err, "invalid session")
	}
	profile, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return domain.Caller{}, asAuth(err, "profile unavailable")
	}
	role := effectiveRole(profile.Role)
	if !role.Valid() {
		return domain.Caller{}, apperr.Auth("profile has an unknown role", nil)
	}
	return domain.Caller{UserID: uid, Role: role}, nil
}

// effectiveRole treats a profile without a stored role as a client.
func effectiveRole(r domain.Role) domain.Role {
	if r == "" {
		return domain.RoleClient
	}
	return r
}

func asAuth(err error, msg string) error {
	if apperr.Is(err, apperr.KindAuth) {
		return err
	}
	return apperr.Auth(msg, err)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Validation("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("invalid email address")
	}
	return email, nil
}
