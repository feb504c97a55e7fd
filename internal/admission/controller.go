package admission

import (
	"context"
	"fmt"
	"time"
)

// CategoryConfig holds the quota and window for one admission category.
type CategoryConfig struct {
	Quota  int           `yaml:"quota"`
	Window time.Duration `yaml:"window"`
}

// Decision is the outcome of one admission check, computed fresh per
// request and never cached.
type Decision struct {
	Limited    bool
	RetryAfter time.Duration
}

// Store owns the per-(identity, category) window counters.
type Store interface {
	// Take increments the counter for key inside the window and
	// returns the post-increment count plus the time remaining in the
	// current window.
	Take(ctx context.Context, key string, window time.Duration) (count int, remaining time.Duration, err error)

	Close() error
}

// Controller decides admission for identities across configured
// categories. Safe for concurrent use.
type Controller struct {
	categories map[string]CategoryConfig
	store      Store
}

// NewController creates a controller over the given category set.
func NewController(categories map[string]CategoryConfig, store Store) (*Controller, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("admission: at least one category is required")
	}
	for name, cfg := range categories {
		if cfg.Quota <= 0 {
			return nil, fmt.Errorf("admission: category %q has non-positive quota", name)
		}
		if cfg.Window <= 0 {
			return nil, fmt.Errorf("admission: category %q has non-positive window", name)
		}
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Controller{categories: categories, store: store}, nil
}

// Check consumes one use for (identity, category) and reports whether
// the request is limited. An unknown category is a wiring error and is
// the only failure mode for valid runtime input.
func (c *Controller) Check(ctx context.Context, identity, category string) (Decision, error) {
	cfg, ok := c.categories[category]
	if !ok {
		return Decision{}, fmt.Errorf("admission: unknown category %q", category)
	}

	key := identity + ":" + category
	count, remaining, err := c.store.Take(ctx, key, cfg.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("admission: store failure: %w", err)
	}

	if count > cfg.Quota {
		return Decision{
			Limited:    true,
			RetryAfter: roundUpSeconds(remaining),
		}, nil
	}
	return Decision{}, nil
}

// Categories returns the configured category names.
func (c *Controller) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	return names
}

// Close releases store resources.
func (c *Controller) Close() error {
	return c.store.Close()
}

// roundUpSeconds rounds a duration up to whole seconds, with a one
// second floor so callers never see "retry in 0s" while limited.
func roundUpSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	rounded := d.Truncate(time.Second)
	if rounded < d {
		rounded += time.Second
	}
	return rounded
}
