package gate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellos-g/web-gate/internal/core/ports"
	"github.com/sellos-g/web-gate/internal/pkg/metrics"
)

const (
	defaultIdleTTL   = 30 * time.Minute
	minSweepInterval = 10 * time.Second
	sweepIntervalDiv = 4
)

// Tab is the per-browser unit of the gate: one session container with its
// navigator and tick queue. Requests of a browser are serialized on its tab.
type Tab struct {
	ID string

	mu        sync.Mutex
	container *Container
	nav       *Recorder
	ticks     *TickQueue
	lastSeen  time.Time
}

// Container returns the tab's session container.
func (t *Tab) Container() *Container { return t.container }

// Settle runs the deferred work of the current step and returns the
// navigation it produced, if any.
func (t *Tab) Settle() (Navigation, bool) {
	t.ticks.Drain()
	return t.nav.Take()
}

// Release unlocks a tab obtained from Registry.Acquire.
func (t *Tab) Release() { t.mu.Unlock() }

// Registry keeps the live tabs, keyed by browser id.
type Registry struct {
	mu      sync.Mutex
	tabs    map[string]*Tab
	storage ports.StorageProvider
	idleTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewRegistry creates a Registry. idleTTL <= 0 uses the default of 30 minutes.
func NewRegistry(storage ports.StorageProvider, idleTTL time.Duration, log zerolog.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Registry{
		tabs:    make(map[string]*Tab),
		storage: storage,
		idleTTL: idleTTL,
		log:     log,
		now:     time.Now,
	}
}

// Acquire returns the locked tab of browserID positioned on path. An empty
// path leaves the tab where it is. A tab seen for the first time is created
// and restored from storage; a tab whose restore hit a storage error tries
// again. The caller must Release it.
func (r *Registry) Acquire(ctx context.Context, browserID, path string) *Tab {
	r.mu.Lock()
	tab, ok := r.tabs[browserID]
	if !ok {
		tab = r.newTab(browserID, path)
		r.tabs[browserID] = tab
		metrics.ActiveTabs.Set(float64(len(r.tabs)))
		// Lock before publishing so concurrent requests wait for the restore.
		tab.mu.Lock()
		tab.lastSeen = r.now()
		r.mu.Unlock()

		tab.container.Restore(ctx)
		return tab
	}
	tab.lastSeen = r.now()
	r.mu.Unlock()

	tab.mu.Lock()
	if path != "" {
		tab.container.Visit(path)
	}
	tab.container.Restore(ctx)
	return tab
}

func (r *Registry) newTab(browserID, path string) *Tab {
	nav := NewRecorder()
	ticks := NewTickQueue()
	log := r.log.With().Str("browser_id", browserID).Logger()
	return &Tab{
		ID:        browserID,
		container: NewContainer(r.storage.Scope(browserID), nav, ticks, log, path),
		nav:       nav,
		ticks:     ticks,
	}
}

// Len returns the number of live tabs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tabs)
}

// Sweep evicts tabs idle for longer than the idle TTL and returns how many
// were dropped. Persisted storage is left alone, so a returning browser is
// restored on its next request. Tabs in use are skipped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	evicted := 0
	for id, tab := range r.tabs {
		if !tab.lastSeen.Before(cutoff) {
			continue
		}
		if !tab.mu.TryLock() {
			continue
		}
		delete(r.tabs, id)
		tab.mu.Unlock()
		evicted++
	}
	metrics.ActiveTabs.Set(float64(len(r.tabs)))
	return evicted
}

// Start launches the idle sweeper. It stops when ctx is cancelled.
func (r *Registry) Start(ctx context.Context) {
	interval := r.idleTTL / sweepIntervalDiv
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.log.Debug().Int("evicted", n).Int("active", r.Len()).Msg("idle tabs evicted")
				}
			}
		}
	}()
}
