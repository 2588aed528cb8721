package ports

import (
	"context"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

// ForgotResult is returned by IdentityAPI.ForgotPassword. DevToken is only
// populated outside production so the reset flow can be exercised locally.
type ForgotResult struct {
	Message  string `json:"message"`
	DevToken string `json:"devToken,omitempty"`
}

// RegisterInput carries the data of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
}

// RegisterResult is returned by IdentityAPI.Register.
type RegisterResult struct {
	User     *domain.User
	DevToken string
}

// IdentityAPI is the identity backend the session gate talks to.
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, string, error)
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) (*ForgotResult, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	// UpdateProfile returns the updated identity and, when the claims changed,
	// a replacement token (empty otherwise).
	UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.Identity, string, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
}
