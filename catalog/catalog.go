// Package catalog tracks the session's active model and caches backend
// model lists.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shelbeely/Conductor-sub001/cache"
	"github.com/shelbeely/Conductor-sub001/provider"
)

// UnknownModelError reports a model id the backend does not serve.
type UnknownModelError struct {
	Provider string
	Model    string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("provider %q does not serve model %q", e.Provider, e.Model)
}

// Catalog is the session-scoped model selection. It lists models lazily,
// once per provider per cache TTL, and validates switches against the
// listed ids. Selection is never persisted across restarts.
type Catalog struct {
	mu      sync.Mutex
	profile provider.Profile
	lists   *cache.Cache[string, []provider.ModelInfo]
	ttl     time.Duration
	lookup  func(name string) (provider.Provider, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL sets how long a model list stays cached.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithLookup replaces the provider registry lookup, for tests.
func WithLookup(lookup func(name string) (provider.Provider, error)) Option {
	return func(c *Catalog) { c.lookup = lookup }
}

// New creates a Catalog for the given starting profile.
func New(profile provider.Profile, opts ...Option) *Catalog {
	c := &Catalog{
		profile: profile,
		lists:   cache.New[string, []provider.ModelInfo](8),
		ttl:     10 * time.Minute,
		lookup:  provider.Get,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile returns a copy of the active profile.
func (c *Catalog) Profile() provider.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// CurrentModel returns the active model id.
func (c *Catalog) CurrentModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Model
}

// ListModels returns the active provider's models, from cache when fresh.
func (c *Catalog) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	c.mu.Lock()
	name := c.profile.Provider
	c.mu.Unlock()
	return c.list(ctx, name, false)
}

// SetModel switches the active model after validating the id against
// the most recent model list; when the id is absent the list is
// re-fetched once before failing.
func (c *Catalog) SetModel(ctx context.Context, id string) error {
	c.mu.Lock()
	name := c.profile.Provider
	c.mu.Unlock()

	models, err := c.list(ctx, name, false)
	if err != nil {
		return err
	}
	if !contains(models, id) {
		models, err = c.list(ctx, name, true)
		if err != nil {
			return err
		}
		if !contains(models, id) {
			return &UnknownModelError{Provider: name, Model: id}
		}
	}

	c.mu.Lock()
	c.profile.Model = id
	c.mu.Unlock()
	return nil
}

func (c *Catalog) list(ctx context.Context, name string, refresh bool) ([]provider.ModelInfo, error) {
	if !refresh {
		if models, ok := c.lists.Get(name); ok {
			return models, nil
		}
	}

	p, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	models, err := p.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s models: %w", name, err)
	}
	c.lists.Set(name, models, c.ttl)
	return models, nil
}

func contains(models []provider.ModelInfo, id string) bool {
	for _, m := range models {
		if m.ID == id {
			return true
		}
	}
	return false
}
