package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an idle controller is kept.
const DefaultSessionTTL = 30 * time.Minute

// Registry holds one Controller per browser session.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	factory     func(key string) *Controller
	ttl         time.Duration
	logger      *slog.Logger
}

// NewRegistry creates a registry that builds controllers with factory.
// A non-positive ttl means DefaultSessionTTL.
func NewRegistry(factory func(key string) *Controller, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		controllers: make(map[string]*Controller),
		factory:     factory,
		ttl:         ttl,
		logger:      logger,
	}
}

// Get returns the controller for key, creating and starting one on first use.
func (r *Registry) Get(key string) *Controller {
	r.mu.Lock()
	c, ok := r.controllers[key]
	if !ok {
		c = r.factory(key)
		r.controllers[key] = c
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug("new viewer session", "session", key)
		c.Start()
	} else {
		c.Touch()
	}
	return c
}

// Lookup returns the controller for key without creating one.
func (r *Registry) Lookup(key string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[key]
	return c, ok
}

// Wait blocks until every live controller's loads have returned.
func (r *Registry) Wait() {
	r.mu.Lock()
	ctrls := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		ctrls = append(ctrls, c)
	}
	r.mu.Unlock()

	for _, c := range ctrls {
		c.Wait()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep drops controllers idle since before now-ttl and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, c := range r.controllers {
		if c.LastSeen().Before(cutoff) {
			delete(r.controllers, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = r.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.logger.Debug("evicted idle viewer sessions", "count", n)
			}
		}
	}
}
