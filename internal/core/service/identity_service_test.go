package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/ports"
	"github.com/sellos-g/web-gate/internal/infrastructure/db/memory"
)

type stubMailQueue struct {
	sent []ports.MailMessage
}

func (q *stubMailQueue) Enqueue(msg ports.MailMessage) { q.sent = append(q.sent, msg) }

type identityFixture struct {
	svc    *IdentityService
	users  *memory.UserRepository
	tokens *memory.TokenStore
	mail   *stubMailQueue
}

func newIdentityFixture(t *testing.T, exposeTokens bool) *identityFixture {
	t.Helper()
	f := &identityFixture{
		users:  memory.NewUserRepository(),
		tokens: memory.NewTokenStore(),
		mail:   &stubMailQueue{},
	}
	f.svc = NewIdentityService(f.users, f.tokens, f.mail, IdentityOptions{
		JWTSecret:       "secret",
		TokenTTL:        time.Hour,
		PublicURL:       "http://localhost:8080/",
		ExposeDevTokens: exposeTokens,
	}, zerolog.Nop())
	return f
}

func (f *identityFixture) register(t *testing.T, email, password, role string) *domain.User {
	t.Helper()
	res, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Usuario",
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res.User
}

func TestIdentityService_Register(t *testing.T) {
	f := newIdentityFixture(t, true)

	res, err := f.svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Carla",
		Email:    "  Carla@Sellos.MX ",
		Password: "pass123",
		Role:     "Empleado",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Email != "carla@sellos.mx" {
		t.Fatalf("email not normalized: %q", res.User.Email)
	}
	if res.User.Role != domain.RoleTagEmployee {
		t.Fatalf("role not canonical: %q", res.User.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if res.DevToken == "" {
		t.Fatalf("expected verification token in development")
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0].Kind != MailKindVerifyEmail {
		t.Fatalf("expected one verification mail, got %+v", f.mail.sent)
	}
	if !strings.Contains(f.mail.sent[0].Body, "http://localhost:8080/verificar-email?token="+res.DevToken) {
		t.Fatalf("unexpected mail body: %s", f.mail.sent[0].Body)
	}
}

func TestIdentityService_Register_Validation(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "X", Email: "x@sellos.mx", Password: "pass123", Role: "gerente"}); err != domain.ErrInvalidAccount {
		t.Fatalf("expected ErrInvalidAccount for bad role, got %v", err)
	}
	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "X", Email: "x@sellos.mx", Password: "123", Role: "cliente"}); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	f.register(t, "dup@sellos.mx", "pass123", "cliente")
	if _, err := f.svc.Register(ctx, ports.RegisterInput{Name: "X", Email: "dup@sellos.mx", Password: "pass123", Role: "cliente"}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestIdentityService_Login_Success(t *testing.T) {
	f := newIdentityFixture(t, false)
	created := f.register(t, "admin@sellos.mx", "s3cret", "admin")

	identity, token, err := f.svc.Login(context.Background(), "ADMIN@sellos.mx", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if identity.Role() != domain.RoleAdministrator || identity.ID() != created.ID {
		t.Fatalf("unexpected identity: %+v", identity.Fields())
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["rol"] != domain.RoleTagAdministrator || claims["sub"] != created.ID {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestIdentityService_Login_Rejected(t *testing.T) {
	f := newIdentityFixture(t, false)
	f.register(t, "dave@sellos.mx", "goodpass", "cliente")

	if _, _, err := f.svc.Login(context.Background(), "dave@sellos.mx", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "ghost@sellos.mx", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown users must look like bad credentials, got %v", err)
	}
}

func TestIdentityService_Logout_RevokesToken(t *testing.T) {
	f := newIdentityFixture(t, false)
	f.register(t, "eva@sellos.mx", "pass123", "cliente")
	_, token, err := f.svc.Login(context.Background(), "eva@sellos.mx", "pass123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	revoked, _ := f.tokens.IsRevoked(context.Background(), token)
	if !revoked {
		t.Fatalf("expected token to be revoked")
	}

	if err := f.svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("logout of an unparsable token should be a no-op, got %v", err)
	}
}

func TestIdentityService_ForgotAndResetPassword(t *testing.T) {
	f := newIdentityFixture(t, true)
	ctx := context.Background()
	f.register(t, "flor@sellos.mx", "oldpass", "cliente")
	f.mail.sent = nil

	res, err := f.svc.ForgotPassword(ctx, "flor@sellos.mx")
	if err != nil {
		t.Fatalf("forgot failed: %v", err)
	}
	if res.DevToken == "" || len(f.mail.sent) != 1 || f.mail.sent[0].Kind != MailKindPasswordReset {
		t.Fatalf("expected reset token and mail, got %+v %+v", res, f.mail.sent)
	}

	if _, err := f.svc.ResetPassword(ctx, res.DevToken, "123"); err != domain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := f.svc.ResetPassword(ctx, res.DevToken, "newpass"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, err := f.svc.ResetPassword(ctx, res.DevToken, "another"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("token must be single use, got %v", err)
	}

	if _, _, err := f.svc.Login(ctx, "flor@sellos.mx", "oldpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password still accepted")
	}
	if _, _, err := f.svc.Login(ctx, "flor@sellos.mx", "newpass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestIdentityService_ForgotPassword_NoEnumeration(t *testing.T) {
	f := newIdentityFixture(t, true)
	f.register(t, "gil@sellos.mx", "pass123", "cliente")

	known, err := f.svc.ForgotPassword(context.Background(), "gil@sellos.mx")
	if err != nil {
		t.Fatalf("forgot failed: %v", err)
	}
	unknown, err := f.svc.ForgotPassword(context.Background(), "nadie@sellos.mx")
	if err != nil {
		t.Fatalf("forgot failed: %v", err)
	}
	if known.Message != unknown.Message {
		t.Fatalf("messages differ: %q vs %q", known.Message, unknown.Message)
	}
	if unknown.DevToken != "" {
		t.Fatalf("unknown e-mail must not get a token")
	}
}

func TestIdentityService_ForgotPassword_HidesTokenOutsideDevelopment(t *testing.T) {
	f := newIdentityFixture(t, false)
	f.register(t, "hugo@sellos.mx", "pass123", "cliente")

	res, err := f.svc.ForgotPassword(context.Background(), "hugo@sellos.mx")
	if err != nil {
		t.Fatalf("forgot failed: %v", err)
	}
	if res.DevToken != "" {
		t.Fatalf("token leaked: %q", res.DevToken)
	}
}

func TestIdentityService_VerifyEmail(t *testing.T) {
	f := newIdentityFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, ports.RegisterInput{Name: "Iris", Email: "iris@sellos.mx", Password: "pass123", Role: "cliente"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := f.svc.VerifyEmail(ctx, res.DevToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	u, _ := f.users.FindByID(ctx, res.User.ID)
	if !u.Verified {
		t.Fatalf("user not marked verified")
	}
	if _, err := f.svc.VerifyEmail(ctx, "bogus"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIdentityService_UpdateProfile(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "juan@sellos.mx", "pass123", "cliente")

	identity, token, err := f.svc.UpdateProfile(ctx, u.ID, map[string]any{
		"nombre": "Juan Pablo",
		"rol":    "administrador",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if identity.Name() != "Juan Pablo" {
		t.Fatalf("name not updated: %q", identity.Name())
	}
	if identity.Role() != domain.RoleClient {
		t.Fatalf("role must not be editable, got %v", identity.Role())
	}
	if token != "" {
		t.Fatalf("no new token expected when e-mail is unchanged")
	}

	identity, token, err = f.svc.UpdateProfile(ctx, u.ID, map[string]any{"email": "JP@sellos.mx"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if identity.Email() != "jp@sellos.mx" || token == "" {
		t.Fatalf("expected new e-mail and replacement token, got %q %q", identity.Email(), token)
	}

	if _, _, err := f.svc.UpdateProfile(ctx, u.ID, map[string]any{"nombre": 5}); !errors.Is(err, domain.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
	if _, _, err := f.svc.UpdateProfile(ctx, "ghost", map[string]any{"nombre": "x"}); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIdentityService_EnsureAccount(t *testing.T) {
	f := newIdentityFixture(t, false)
	in := ports.RegisterInput{Name: "Admin", Email: "root@sellos.mx", Password: "pass123", Role: "administrador"}

	if err := f.svc.EnsureAccount(context.Background(), in); err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	if err := f.svc.EnsureAccount(context.Background(), in); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if len(f.mail.sent) != 1 {
		t.Fatalf("expected a single registration, got %d mails", len(f.mail.sent))
	}
}
