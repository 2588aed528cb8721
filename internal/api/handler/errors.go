package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sellos-g/web-gate/internal/core/domain"
)

// StatusFor maps a domain error to its HTTP status and public message.
// ok is false for errors the domain does not know.
func StatusFor(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Credenciales inválidas.", true
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "No has iniciado sesión.", true
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "El enlace no es válido o ha expirado.", true
	case errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres.", true
	case errors.Is(err, domain.ErrInvalidAccount), errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found", true
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists", true
	}
	return 0, "", false
}

// respondError renders known domain errors with the {"error": msg} envelope
// and hands anything else to the central error handler.
func respondError(c echo.Context, err error) error {
	if status, msg, ok := StatusFor(err); ok {
		return c.JSON(status, map[string]string{"error": msg})
	}
	return err
}
