package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/ports"
	"github.com/sellos-g/web-gate/internal/pkg/metrics"
)

const (
	minPasswordLen = 6

	defaultTokenTTL  = 24 * time.Hour
	defaultResetTTL  = time.Hour
	defaultVerifyTTL = 48 * time.Hour

	msgForgotPassword = "Si el correo está registrado, recibirás un enlace para restablecer tu contraseña."
	msgPasswordReset  = "Contraseña actualizada correctamente."
	msgEmailVerified  = "Correo verificado correctamente."
)

// Mail kinds.
const (
	MailKindPasswordReset = "password_reset"
	MailKindVerifyEmail   = "verify_email"
)

// IdentityOptions configures IdentityService. Zero TTLs fall back to defaults.
type IdentityOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	ResetTTL  time.Duration
	VerifyTTL time.Duration
	// PublicURL prefixes the links sent by e-mail.
	PublicURL string
	// ExposeDevTokens returns one-time tokens in API responses. Development only.
	ExposeDevTokens bool
}

// IdentityService implements ports.IdentityAPI on top of a user repository,
// a one-time token store and the mail queue.
type IdentityService struct {
	users  ports.UserRepository
	tokens ports.TokenStore
	mail   ports.MailQueue
	opts   IdentityOptions
	log    zerolog.Logger
	now    func() time.Time
}

func NewIdentityService(users ports.UserRepository, tokens ports.TokenStore, mail ports.MailQueue, opts IdentityOptions, log zerolog.Logger) *IdentityService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = defaultResetTTL
	}
	if opts.VerifyTTL <= 0 {
		opts.VerifyTTL = defaultVerifyTTL
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	return &IdentityService{
		users:  users,
		tokens: tokens,
		mail:   mail,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, "", err
	}

	metrics.LoginsTotal.WithLabelValues("accepted").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login accepted")
	return user.Identity(), token, nil
}

// Logout revokes token until it would have expired anyway. Tokens that fail
// to parse are already useless and are ignored.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	claims, err := s.ParseToken(token)
	if err != nil {
		return nil
	}

	ttl := s.opts.TokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = exp.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Revoke(ctx, token, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *IdentityService) ForgotPassword(ctx context.Context, email string) (*ports.ForgotResult, error) {
	result := &ports.ForgotResult{Message: msgForgotPassword}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, ports.TokenPurposeReset, user.ID, s.opts.ResetTTL)
	if err != nil {
		return nil, fmt.Errorf("issue reset token: %w", err)
	}

	s.mail.Enqueue(ports.MailMessage{
		To:      user.Email,
		Subject: "Restablece tu contraseña",
		Body:    fmt.Sprintf("Hola %s, usa este enlace para restablecer tu contraseña: %s/reset-password/%s", user.Name, s.opts.PublicURL, token),
		Kind:    MailKindPasswordReset,
	})

	if s.opts.ExposeDevTokens {
		result.DevToken = token
	}
	return result, nil
}

func (s *IdentityService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if len(newPassword) < minPasswordLen {
		return "", domain.ErrWeakPassword
	}

	userID, err := s.tokens.Consume(ctx, ports.TokenPurposeReset, token)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", userID).Msg("password reset")
	return msgPasswordReset, nil
}

func (s *IdentityService) VerifyEmail(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Consume(ctx, ports.TokenPurposeVerify, token)
	if err != nil {
		return "", err
	}
	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return "", err
	}
	return msgEmailVerified, nil
}

// UpdateProfile applies the editable fields of patch (nombre, email,
// telefono). Other keys are ignored. A replacement token is returned when the
// e-mail changed, since it is part of the token claims.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.Identity, string, error) {
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	changes, err := profileChanges(patch)
	if err != nil {
		return nil, "", err
	}
	if changes.Empty() {
		return current.Identity(), "", nil
	}

	updated, err := s.users.UpdateProfile(ctx, userID, changes)
	if err != nil {
		return nil, "", err
	}

	token := ""
	if updated.Email != current.Email {
		if token, err = s.generateToken(updated); err != nil {
			return nil, "", err
		}
	}
	return updated.Identity(), token, nil
}

// Register creates an account and mails it a verification link.
func (s *IdentityService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	email := normalizeEmail(in.Email)
	role := domain.ParseRole(in.Role)
	if email == "" || strings.TrimSpace(in.Name) == "" || role == domain.RoleUnknown {
		return nil, domain.ErrInvalidAccount
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role.String(),
		Phone:        strings.TrimSpace(in.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, ports.TokenPurposeVerify, created.ID, s.opts.VerifyTTL)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}
	s.mail.Enqueue(ports.MailMessage{
		To:      created.Email,
		Subject: "Verifica tu correo",
		Body:    fmt.Sprintf("Hola %s, confirma tu correo en: %s/verificar-email?token=%s", created.Name, s.opts.PublicURL, token),
		Kind:    MailKindVerifyEmail,
	})

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("account registered")

	result := &ports.RegisterResult{User: created}
	if s.opts.ExposeDevTokens {
		result.DevToken = token
	}
	return result, nil
}

// EnsureAccount registers in unless an account with its e-mail already
// exists. Used to seed the first administrator.
func (s *IdentityService) EnsureAccount(ctx context.Context, in ports.RegisterInput) error {
	_, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if _, err := s.Register(ctx, in); err != nil && !errors.Is(err, domain.ErrUserExists) {
		return err
	}
	return nil
}

// ParseToken validates an HS256 bearer token and returns its claims.
func (s *IdentityService) ParseToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *IdentityService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"rol":   user.Role,
		"exp":   s.now().Add(s.opts.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}

func profileChanges(patch map[string]any) (ports.ProfileChanges, error) {
	var changes ports.ProfileChanges
	for key, dst := range map[string]**string{
		domain.FieldName:  &changes.Name,
		domain.FieldEmail: &changes.Email,
		domain.FieldPhone: &changes.Phone,
	} {
		raw, ok := patch[key]
		if !ok {
			continue
		}
		v, ok := raw.(string)
		if !ok {
			return ports.ProfileChanges{}, fmt.Errorf("%w: %s must be a string", domain.ErrInvalidProfile, key)
		}
		v = strings.TrimSpace(v)
		if key == domain.FieldEmail {
			v = normalizeEmail(v)
		}
		if v == "" && key != domain.FieldPhone {
			return ports.ProfileChanges{}, fmt.Errorf("%w: %s cannot be empty", domain.ErrInvalidProfile, key)
		}
		*dst = &v
	}
	return changes, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
