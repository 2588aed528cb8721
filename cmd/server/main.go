// @title                      Sellos-G Web Gate API
// @version                    1.0
// @description                Session gate, identity API and page routing for the Sellos-G storefront.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	_ "github.com/sellos-g/web-gate/docs"
	"github.com/sellos-g/web-gate/internal/api"
	"github.com/sellos-g/web-gate/internal/api/handler"
	"github.com/sellos-g/web-gate/internal/api/middleware"
	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/gate"
	"github.com/sellos-g/web-gate/internal/core/ports"
	"github.com/sellos-g/web-gate/internal/core/service"
	"github.com/sellos-g/web-gate/internal/infrastructure/db/memory"
	mongostore "github.com/sellos-g/web-gate/internal/infrastructure/db/mongo"
	redisstore "github.com/sellos-g/web-gate/internal/infrastructure/db/redis"
	"github.com/sellos-g/web-gate/internal/infrastructure/mail"
	"github.com/sellos-g/web-gate/internal/infrastructure/queue"
	"github.com/sellos-g/web-gate/internal/pkg/config"
	"github.com/sellos-g/web-gate/pkg/logger"
)

const (
	appName         = "sellos-g"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.Load()
	displayAppname(appName)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "web-gate",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	dispatcher := queue.NewDispatcher(cfg.MailWorkers, mail.NewLogMailer(logger.Component("mail")), logger.Component("mail"))
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workersCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	identity := service.NewIdentityService(store.users, store.tokens, dispatcher, service.IdentityOptions{
		JWTSecret:       cfg.JWTSecret,
		TokenTTL:        cfg.TokenTTL,
		ResetTTL:        cfg.ResetTTL,
		VerifyTTL:       cfg.VerifyTTL,
		PublicURL:       cfg.PublicURL,
		ExposeDevTokens: cfg.IsDevelopment(),
	}, logger.Component("identity"))

	if cfg.Seed.AdminEmail != "" {
		err := identity.EnsureAccount(ctx, ports.RegisterInput{
			Name:     "Administrador",
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
			Role:     domain.RoleTagAdministrator,
		})
		if err != nil {
			return fmt.Errorf("seed administrator: %w", err)
		}
	}

	registry := gate.NewRegistry(store.storage, cfg.Session.IdleTTL, logger.Component("gate"))
	registry.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		Registry:    registry,
		Identity:    identity,
		Revocations: store.tokens,
		JWTSecret:   cfg.JWTSecret,
		Cookie: middleware.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
		StoreMode: cfg.Session.Store,
		Health:    store.health,
		Log:       logger.Component("http"),
	})

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Str("store", cfg.Session.Store).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// backend groups the storage implementations chosen by SESSION_STORE.
type backend struct {
	storage ports.StorageProvider
	tokens  ports.TokenStore
	users   ports.UserRepository
	health  map[string]handler.Pinger
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	if cfg.Session.Store == config.StoreMemory {
		log.Warn().Msg("running with in-memory storage; sessions and accounts are lost on restart")
		return &backend{
			storage: memory.NewStorage(),
			tokens:  memory.NewTokenStore(),
			users:   memory.NewUserRepository(),
			close:   func() {},
		}, nil
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	users := mongostore.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = rdb.Close()
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Str("redis", cfg.Redis.Addr).Str("mongo_db", cfg.Mongo.Database).Msg("storage connected")
	return &backend{
		storage: redisstore.NewSessionStorage(rdb, cfg.Session.KeyPrefix, cfg.Session.StoreTTL),
		tokens:  redisstore.NewTokenStore(rdb, cfg.Session.KeyPrefix),
		users:   users,
		health: map[string]handler.Pinger{
			"redis":   redisstore.Pinger{Client: rdb},
			"mongodb": mongostore.Pinger{Client: client},
		},
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
			_ = rdb.Close()
		},
	}, nil
}

func displayAppname(name string) {
	figure.NewFigure(name, "cybermedium", true).Print()
	fmt.Println()
}
