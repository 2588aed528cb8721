package handler

import "github.com/sellos-g/web-gate/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  *domain.Identity `json:"user" swaggertype:"object"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type profileResponse struct {
	User *domain.Identity `json:"user" swaggertype:"object"`
	// Token replaces the caller's token when the profile change touched its claims.
	Token string `json:"token,omitempty"`
}

type registerRequest struct {
	Name     string `json:"nombre"   validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"rol"      validate:"required"`
	Phone    string `json:"telefono" validate:"omitempty,max=30"`
}

type registerResponse struct {
	User     *domain.User `json:"user"`
	DevToken string       `json:"devToken,omitempty"`
}
