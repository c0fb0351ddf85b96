package scheduler

import "time"

// Config controls sweep cadence and batch sizes.
type Config struct {
	SweepInterval time.Duration
	SweepBatch    int
	SweepTimeout  time.Duration
	LockTTL       time.Duration
}

func DefaultConfig() Config {
	return Config{
		SweepInterval: 5 * time.Minute,
		SweepBatch:    100,
		SweepTimeout:  30 * time.Second,
		LockTTL:       time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaults.SweepInterval
	}
	if c.SweepBatch <= 0 {
		c.SweepBatch = defaults.SweepBatch
	}
	if c.SweepTimeout <= 0 {
		c.SweepTimeout = defaults.SweepTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
