package gate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sellos-g/web-gate/internal/core/domain"
	"github.com/sellos-g/web-gate/internal/core/ports"
	"github.com/sellos-g/web-gate/internal/pkg/metrics"
)

// Persisted storage keys.
const (
	StorageKeyToken = "token"
	StorageKeyUser  = "user"
)

// Container owns the authentication state of one browser tab. It is the only
// writer of the tab's persisted storage.
//
// The zero value is not usable; create containers with NewContainer.
type Container struct {
	mu    sync.Mutex
	store ports.KeyValueStore
	nav   Navigator
	ticks *TickQueue
	log   zerolog.Logger

	user     *domain.Identity
	token    string
	loading  bool
	restored bool
	path     string

	// redirecting is set while an auth-state redirect sits in the tick queue.
	redirecting bool
}

// NewContainer returns an empty session that is still loading. path is the
// location the tab was opened on.
func NewContainer(store ports.KeyValueStore, nav Navigator, ticks *TickQueue, log zerolog.Logger, path string) *Container {
	return &Container{
		store:   store,
		nav:     nav,
		ticks:   ticks,
		log:     log,
		loading: true,
		path:    path,
	}
}

// Restore loads the persisted session. Once a read succeeds further calls do
// nothing. A storage read error leaves the persisted pair alone and the
// container unauthenticated; the next call reads again.
// Whatever the outcome, loading ends up false.
func (c *Container) Restore(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.restored {
		return
	}

	user, token, outcome := c.readPersisted(ctx)
	metrics.SessionRestoresTotal.WithLabelValues(outcome).Inc()

	switch {
	case user != nil:
		c.restored = true
		c.user, c.token = user, token
		c.log.Debug().Str("user_id", user.ID()).Str("role", user.Role().Label()).Msg("session restored")
	case outcome == "storage_error":
		c.user, c.token = nil, ""
	default:
		c.restored = true
		c.user, c.token = nil, ""
		c.removePersisted(ctx)
		if outcome == "malformed" {
			c.log.Warn().Msg("discarded malformed persisted session")
		}
	}

	c.loading = false
	c.authStateChanged()
}

func (c *Container) readPersisted(ctx context.Context) (*domain.Identity, string, string) {
	token, hasToken, err := c.store.Get(ctx, StorageKeyToken)
	if err != nil {
		c.storageFailed("get", err)
		return nil, "", "storage_error"
	}
	raw, hasUser, err := c.store.Get(ctx, StorageKeyUser)
	if err != nil {
		c.storageFailed("get", err)
		return nil, "", "storage_error"
	}

	switch {
	case !hasToken && !hasUser:
		return nil, "", "empty"
	case !hasToken || !hasUser || token == "":
		return nil, "", "malformed"
	}

	user, err := domain.DecodeIdentity([]byte(raw))
	if err != nil {
		return nil, "", "malformed"
	}
	return user, token, "restored"
}

// Login installs a server-issued identity and token and persists both.
// It does not navigate; the redirect policy decides that.
func (c *Container) Login(ctx context.Context, user *domain.Identity, token string) {
	if user == nil || token == "" {
		c.log.Warn().Msg("ignored login without identity or token")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.user, c.token = user, token
	c.loading = false
	c.restored = true
	c.persist(ctx, user, token)

	c.log.Info().Str("user_id", user.ID()).Str("role", user.Role().Label()).Msg("session started")
	c.authStateChanged()
}

// Logout clears the session and its storage and sends the tab to the login page.
func (c *Container) Logout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userID := ""
	if c.user != nil {
		userID = c.user.ID()
	}

	c.user, c.token = nil, ""
	c.loading = false
	c.restored = true
	c.removePersisted(ctx)
	c.authStateChanged()

	c.nav.Navigate(domain.PathLogin, true)
	c.path = domain.PathLogin

	c.log.Info().Str("user_id", userID).Msg("session ended")
}

// UpdateIdentity merges patch into the current identity, persists the result
// and returns it. Without a logged-in user it does nothing and returns nil.
func (c *Container) UpdateIdentity(ctx context.Context, patch map[string]any) *domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil || c.token == "" {
		return nil
	}

	merged := c.user.Merge(patch)
	c.user = merged
	c.persistUser(ctx, merged)
	c.authStateChanged()
	return merged
}

// Visit records the tab's current location. Location changes alone never
// re-run the redirect policy: arriving somewhere must not bounce the tab again.
func (c *Container) Visit(path string) {
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
}

// Snapshot returns a copy of the session state.
func (c *Container) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Path returns the tab's current location.
func (c *Container) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// State returns the redirect-policy state.
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Container) snapshotLocked() Session {
	return Session{
		User:            c.user,
		Token:           c.token,
		Loading:         c.loading,
		IsAuthenticated: c.token != "",
	}
}

func (c *Container) stateLocked() State {
	switch {
	case c.loading:
		return StateAuthenticating
	case c.token == "" || c.user == nil:
		return StateUnauthenticated
	case domain.IsPublicOnlyRedirectPath(c.path):
		return StateAuthenticatedOnPublic
	default:
		return StateAuthenticatedOnProtected
	}
}

// authStateChanged runs the redirect policy. It is called after every change
// of loading, token or user, and from nowhere else. Must hold c.mu.
func (c *Container) authStateChanged() {
	if c.stateLocked() != StateAuthenticatedOnPublic {
		return
	}
	if c.redirecting {
		metrics.RedirectsTotal.WithLabelValues("suppressed").Inc()
		return
	}

	target := domain.RoleHome(c.user.Role())
	if target == c.path {
		metrics.RedirectsTotal.WithLabelValues("dropped").Inc()
		return
	}

	c.redirecting = true
	metrics.RedirectsTotal.WithLabelValues("scheduled").Inc()
	c.ticks.Post(func() { c.redirect(target) })
}

func (c *Container) redirect(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() { c.redirecting = false }()
	if c.token == "" || c.user == nil {
		// Logged out before the tick ran.
		return
	}
	c.nav.Navigate(target, true)
	c.path = target
	c.log.Debug().Str("to", target).Msg("redirected to role home")
}

func (c *Container) persist(ctx context.Context, user *domain.Identity, token string) {
	if err := c.store.Set(ctx, StorageKeyToken, token); err != nil {
		c.storageFailed("set", err)
	}
	c.persistUser(ctx, user)
}

func (c *Container) persistUser(ctx context.Context, user *domain.Identity) {
	raw, err := json.Marshal(user)
	if err != nil {
		c.storageFailed("set", err)
		return
	}
	if err := c.store.Set(ctx, StorageKeyUser, string(raw)); err != nil {
		c.storageFailed("set", err)
	}
}

func (c *Container) removePersisted(ctx context.Context) {
	if err := c.store.Remove(ctx, StorageKeyToken, StorageKeyUser); err != nil {
		c.storageFailed("remove", err)
	}
}

// storageFailed records a storage error. The in-memory session stays
// authoritative, so the tab keeps working until it is evicted.
func (c *Container) storageFailed(op string, err error) {
	metrics.StorageErrorsTotal.WithLabelValues(op).Inc()
	ev := c.log.Warn().Err(err).Str("op", op)
	if errors.Is(err, context.Canceled) {
		ev = c.log.Debug().Err(err).Str("op", op)
	}
	ev.Msg("session storage failure, continuing in memory")
}
