// Package nats publishes outbox records to NATS JetStream.
package nats

import "time"

// Config controls the connection used to deliver outbox records. The
// outbox is the buffer while NATS is unreachable, so the client keeps
// reconnecting and never queues publishes in memory.
type Config struct {
	URL  string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	Name string `env:"NATS_CLIENT_NAME" envDefault:"ctbridge"`

	// MaxReconnects of -1 reconnects forever.
	MaxReconnects int           `env:"NATS_MAX_RECONNECTS" envDefault:"-1"`
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`

	ConnectTimeout time.Duration `env:"NATS_CONNECT_TIMEOUT" envDefault:"5s"`

	// PublishTimeout bounds the wait for one JetStream ack.
	PublishTimeout time.Duration `env:"NATS_PUBLISH_TIMEOUT" envDefault:"5s"`

	Stream StreamConfig `envPrefix:"NATS_STREAM_"`
}

// StreamConfig describes the stream that captures clevertap.> subjects.
type StreamConfig struct {
	Name     string        `env:"NAME" envDefault:"CLEVERTAP_RECORDS"`
	Subjects []string      `env:"SUBJECTS" envDefault:"clevertap.>"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"72h"`
	MaxBytes int64         `env:"MAX_BYTES" envDefault:"268435456"`
	Replicas int           `env:"REPLICAS" envDefault:"1"`

	// Storage is "file" or "memory".
	Storage string `env:"STORAGE" envDefault:"file"`

	// DuplicateWindow must outlast the flusher's longest backoff so a
	// redelivered record is still recognized by its message ID.
	DuplicateWindow time.Duration `env:"DUPLICATE_WINDOW" envDefault:"10m"`
}
