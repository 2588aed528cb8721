package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sellos-g/web-gate/internal/api/handler"
	"github.com/sellos-g/web-gate/internal/api/middleware"
	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/gate"
	"github.com/sellos-g/web-gate/internal/core/ports"
)

// Dependencies is everything the HTTP layer is built from.
type Dependencies struct {
	Registry    *gate.Registry
	Identity    ports.IdentityAPI
	Revocations middleware.RevocationChecker
	JWTSecret   string
	Cookie      middleware.CookieConfig

	// StoreMode and Health feed the readiness probe.
	StoreMode string
	Health    map[string]handler.Pinger

	// Metrics default to the global Prometheus registry when nil.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer, gatherer := d.MetricsRegisterer, d.MetricsGatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "sellos",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Ops (no session) ---
	health := handler.NewHealthHandler(d.StoreMode, d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Identity REST API (bearer) ---
	authHandler := handler.NewAuthHandler(d.Identity)
	bearer := middleware.Auth(d.JWTSecret, d.Revocations)

	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password/:token", authHandler.ResetPassword)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/logout", authHandler.Logout, bearer)
	auth.PATCH("/profile", authHandler.UpdateProfile, bearer)
	auth.POST("/register", authHandler.Register, bearer, middleware.RequireRole(domain.RoleAdministrator))

	// --- Session API (browser tab, located by X-Current-Path) ---
	sessionHandler := handler.NewSessionHandler(d.Identity, d.Log)
	session := e.Group("/session", middleware.Browser(d.Registry, d.Cookie, middleware.ClientPath))
	session.GET("", sessionHandler.Get)
	session.POST("/login", sessionHandler.Login)
	session.POST("/logout", sessionHandler.Logout)
	session.PATCH("/profile", sessionHandler.UpdateProfile)

	// --- Pages (browser tab, located by the request path) ---
	pageHandler := handler.NewPageHandler(d.Log)
	pages := e.Group("", middleware.Browser(d.Registry, d.Cookie, middleware.PagePath))
	for _, route := range gate.Routes {
		pages.GET(route.Path, pageHandler.Serve(route))
		if route.Subtree {
			pages.GET(route.Path+"/*", pageHandler.Serve(route))
		}
	}
	pages.GET(gate.NotFoundRoute.Path, pageHandler.Serve(gate.NotFoundRoute))

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
