package unitcache

import "go.trai.ch/unitcache/internal/core/ports"

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for expiry.
func WithClock(clock ports.Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithActiveUnits sets the host registry consulted before any cache tier.
func WithActiveUnits(active ports.ActiveUnits) Option {
	return func(c *Cache) {
		c.active = active
	}
}

// WithRematerializer sets how a validated disk record is turned back into a handle.
func WithRematerializer(remat ports.Rematerializer) Option {
	return func(c *Cache) {
		c.remat = remat
	}
}
