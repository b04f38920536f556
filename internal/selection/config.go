package selection

import "time"

// Config tunes the selector. Zero fields fall back to DefaultConfig values,
// except StrugglingRatio where zero is a meaningful setting; use
// NewConfig to apply overrides.
type Config struct {
	// StrugglingRatio is the probability of sampling the topic from the
	// struggling pool instead of uniformly.
	StrugglingRatio float64

	// StrugglingPoolFraction of topics (rounded up, at least
	// MinStrugglingPool) form the struggling pool.
	StrugglingPoolFraction float64
	MinStrugglingPool      int

	// RecentExclusion keeps just-answered cards out of the normal pools.
	RecentExclusion time.Duration

	DueFailedMastery float64
	DueFailedLimit   int
	DueLimit         int
	NewLimit         int
	UpcomingLimit    int
}

// DefaultConfig returns the standard selection parameters.
func DefaultConfig() Config {
	return Config{
		StrugglingRatio:        0.5,
		StrugglingPoolFraction: 0.5,
		MinStrugglingPool:      2,
		RecentExclusion:        5 * time.Minute,
		DueFailedMastery:       0.3,
		DueFailedLimit:         3,
		DueLimit:               5,
		NewLimit:               10,
		UpcomingLimit:          3,
	}
}

// NewConfig returns DefaultConfig with the struggling ratio and exclusion
// window replaced. A negative exclusion keeps the default.
func NewConfig(strugglingRatio float64, recentExclusion time.Duration) Config {
	cfg := DefaultConfig()
	if strugglingRatio >= 0 && strugglingRatio <= 1 {
		cfg.StrugglingRatio = strugglingRatio
	}
	if recentExclusion >= 0 {
		cfg.RecentExclusion = recentExclusion
	}
	return cfg
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StrugglingPoolFraction <= 0 || c.StrugglingPoolFraction > 1 {
		c.StrugglingPoolFraction = d.StrugglingPoolFraction
	}
	if c.MinStrugglingPool <= 0 {
		c.MinStrugglingPool = d.MinStrugglingPool
	}
	if c.DueFailedMastery <= 0 {
		c.DueFailedMastery = d.DueFailedMastery
	}
	if c.DueFailedLimit <= 0 {
		c.DueFailedLimit = d.DueFailedLimit
	}
	if c.DueLimit <= 0 {
		c.DueLimit = d.DueLimit
	}
	if c.NewLimit <= 0 {
		c.NewLimit = d.NewLimit
	}
	if c.UpcomingLimit <= 0 {
		c.UpcomingLimit = d.UpcomingLimit
	}
	return c
}
