package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/ports"
)

type stubIdentityAPI struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.Identity, string, error)
	logoutFn   func(ctx context.Context, token string) error
	forgotFn   func(ctx context.Context, email string) (*ports.ForgotResult, error)
	resetFn    func(ctx context.Context, token, newPassword string) (string, error)
	verifyFn   func(ctx context.Context, token string) (string, error)
	profileFn  func(ctx context.Context, userID string, patch map[string]any) (*domain.Identity, string, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error)
}

func (s *stubIdentityAPI) Login(ctx context.Context, email, password string) (*domain.Identity, string, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubIdentityAPI) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s *stubIdentityAPI) ForgotPassword(ctx context.Context, email string) (*ports.ForgotResult, error) {
	return s.forgotFn(ctx, email)
}

func (s *stubIdentityAPI) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	return s.resetFn(ctx, token, newPassword)
}

func (s *stubIdentityAPI) VerifyEmail(ctx context.Context, token string) (string, error) {
	return s.verifyFn(ctx, token)
}

func (s *stubIdentityAPI) UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.Identity, string, error) {
	return s.profileFn(ctx, userID, patch)
}

func (s *stubIdentityAPI) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	return s.registerFn(ctx, in)
}

func mustIdentity(t *testing.T, fields map[string]any) *domain.Identity {
	t.Helper()
	id, err := domain.NewIdentity(fields)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	return id
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// serve runs h and renders a returned error the way echo would.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			if email != "ana@sellos.mx" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return mustIdentity(t, map[string]any{"id": "u1", "nombre": "Ana", "rol": "administrador"}), "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"ana@sellos.mx","password":"secret"}`), rec)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["nombre"] != "Ana" || user["rol"] != "administrador" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			return nil, "", domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"ana@sellos.mx","password":"bad"}`), rec)
	serve(e, c, handler.Login)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		loginFn: func(ctx context.Context, email, password string) (*domain.Identity, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	handler := NewAuthHandler(stub)

	for _, body := range []string{"not-json", `{"email":"not-an-email","password":"x"}`, `{"email":"ana@sellos.mx"}`} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", body), rec)
		serve(e, c, handler.Login)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	revoked := ""
	stub := &stubIdentityAPI{
		logoutFn: func(ctx context.Context, token string) error {
			revoked = token
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)
	c.Set("user_id", "u1")
	c.Set("token", "tok")
	serve(e, c, handler.Logout)

	if rec.Code != http.StatusNoContent || revoked != "tok" {
		t.Fatalf("expected 204 and revocation, got %d %q", rec.Code, revoked)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)
	serve(e, c, handler.Logout)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rec.Code)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		forgotFn: func(ctx context.Context, email string) (*ports.ForgotResult, error) {
			return &ports.ForgotResult{Message: "enviado", DevToken: "dev"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/forgot-password", `{"email":"ana@sellos.mx"}`), rec)
	serve(e, c, handler.ForgotPassword)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["message"] != "enviado" || resp["devToken"] != "dev" {
		t.Fatalf("unexpected payload: %v", resp)
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		resetFn: func(ctx context.Context, token, newPassword string) (string, error) {
			if token != "abc" {
				return "", domain.ErrInvalidToken
			}
			if len(newPassword) < 6 {
				return "", domain.ErrWeakPassword
			}
			return "ok", nil
		},
	}
	handler := NewAuthHandler(stub)

	tests := []struct {
		token string
		body  string
		want  int
	}{
		{"abc", `{"password":"newpass"}`, http.StatusOK},
		{"abc", `{"password":"123"}`, http.StatusBadRequest},
		{"zzz", `{"password":"newpass"}`, http.StatusBadRequest},
		{"abc", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/reset-password/"+tt.token, tt.body), rec)
		c.SetParamNames("token")
		c.SetParamValues(tt.token)
		serve(e, c, handler.ResetPassword)

		if rec.Code != tt.want {
			t.Fatalf("%s %s: expected %d, got %d", tt.token, tt.body, tt.want, rec.Code)
		}
	}
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		verifyFn: func(ctx context.Context, token string) (string, error) {
			return "verificado", nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/verify-email", `{"token":"abc"}`), rec)
	serve(e, c, handler.VerifyEmail)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "verificado") {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		profileFn: func(ctx context.Context, userID string, patch map[string]any) (*domain.Identity, string, error) {
			if userID != "u1" || patch["nombre"] != "Ana Luisa" {
				t.Fatalf("unexpected args: %s %v", userID, patch)
			}
			return mustIdentity(t, map[string]any{"id": "u1", "nombre": "Ana Luisa", "rol": "cliente"}), "", nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/api/auth/profile", `{"nombre":"Ana Luisa"}`), rec)
	c.Set("user_id", "u1")
	serve(e, c, handler.UpdateProfile)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if _, hasToken := resp["token"]; hasToken {
		t.Fatalf("token should be omitted when unchanged")
	}
}

func TestAuthHandler_Register(t *testing.T) {
	e := newTestEcho()
	stub := &stubIdentityAPI{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
			if in.Email == "dup@sellos.mx" {
				return nil, domain.ErrUserExists
			}
			if in.Name != "Beto" || in.Role != "empleado" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.RegisterResult{User: &domain.User{ID: "u2", Name: in.Name, Email: in.Email, Role: in.Role, PasswordHash: "hash"}}, nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", `{"nombre":"Beto","email":"beto@sellos.mx","password":"pass123","rol":"empleado"}`), rec)
	serve(e, c, handler.Register)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", `{"nombre":"Beto","email":"dup@sellos.mx","password":"pass123","rol":"empleado"}`), rec)
	serve(e, c, handler.Register)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/api/auth/register", `{"nombre":"Beto","email":"beto@sellos.mx","password":"123","rol":"empleado"}`), rec)
	serve(e, c, handler.Register)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a short password, got %d", rec.Code)
	}
}
