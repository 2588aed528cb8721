package domain

import "errors"

var (
	ErrMalformedIdentity  = errors.New("malformed identity record")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidProfile     = errors.New("invalid profile update")
	ErrInvalidAccount     = errors.New("invalid account data")
)
