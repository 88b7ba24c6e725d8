package delivery

import "time"

// Config controls how the outbox is drained.
type Config struct {
	// BatchSize is the number of records published per flush.
	BatchSize int `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`

	// FlushInterval is the time between periodic flushes.
	FlushInterval time.Duration `env:"OUTBOX_FLUSH_INTERVAL" envDefault:"5s"`

	// RateLimit is the sustained number of records published per second.
	RateLimit float64 `env:"OUTBOX_RATE_LIMIT" envDefault:"200"`

	// RateBurst is the number of records that may be published at once.
	// It is raised to BatchSize when smaller.
	RateBurst int `env:"OUTBOX_RATE_BURST" envDefault:"50"`

	// MaxRetries is the number of failed publishes after which a record is
	// dead-lettered. Zero keeps retrying forever.
	MaxRetries int `env:"OUTBOX_MAX_RETRIES" envDefault:"10"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		BatchSize:     50,
		FlushInterval: 5 * time.Second,
		RateLimit:     200,
		RateBurst:     50,
		MaxRetries:    10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = d.FlushInterval
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.RateBurst < c.BatchSize {
		c.RateBurst = c.BatchSize
	}
	return c
}
