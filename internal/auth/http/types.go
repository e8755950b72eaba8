package http

import (
	"context"
	"time"

	"github.com/grayola/task-manager/internal/auth/domain"
)

// AccountService is the behaviour the account handlers depend on.
type AccountService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, caller domain.Caller) error
	GetProfile(ctx context.Context, caller domain.Caller) (*domain.Profile, error)
	ChangeRole(ctx context.Context, caller domain.Caller, targetID string, role domain.Role) (*domain.Profile, error)
}

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type Handler struct {
	accounts AccountService
	cookie   CookieConfig
}

func New(accounts AccountService, cookie CookieConfig) *Handler {
	return &Handler{
		accounts: accounts,
		cookie:   cookie,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}
