package nats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Client is the JetStream connection the outbox flusher publishes through.
// It starts even when the server is down and reconnects in the background;
// records wait in the outbox meanwhile.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	onConnect []func()
}

// NewClient dials cfg.URL. It does not fail when the server is unreachable.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{cfg: cfg, logger: logger.With("component", "nats-client")}

	conn, err := nats.Connect(cfg.URL, c.options()...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.URL, err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	c.conn = conn
	c.js = js

	if conn.IsConnected() {
		c.logger.Info("connected to NATS", "url", conn.ConnectedUrl())
	} else {
		c.logger.Warn("NATS unreachable, retrying in the background", "url", cfg.URL)
	}
	return c, nil
}

// options maps Config onto the connection. Publishes are never buffered
// during a reconnect: a failed publish leaves the record in the outbox,
// which is the durable buffer.
func (c *Client) options() []nats.Option {
	return []nats.Option{
		nats.Name(c.cfg.Name),
		nats.Timeout(c.cfg.ConnectTimeout),
		nats.MaxReconnects(c.cfg.MaxReconnects),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectBufSize(-1),
		nats.ConnectHandler(c.handleConnect),
		nats.ReconnectHandler(c.handleConnect),
		nats.DisconnectErrHandler(c.handleDisconnect),
	}
}

// OnConnect registers fn to run each time the connection comes up,
// including a first connection made after NewClient returned.
func (c *Client) OnConnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, fn)
}

func (c *Client) handleConnect(*nats.Conn) {
	c.logger.Info("NATS connection up")
	c.mu.Lock()
	hooks := append([]func(){}, c.onConnect...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (c *Client) handleDisconnect(_ *nats.Conn, err error) {
	if err != nil {
		c.logger.Warn("NATS connection lost, records stay in the outbox", "error", err)
	}
}

// NewPublisher returns a Publisher bounded by the configured ack timeout.
func (c *Client) NewPublisher() *Publisher {
	p := NewPublisher(c.js, c.logger)
	p.timeout = c.cfg.PublishTimeout
	return p
}

// NewStreamManager returns a StreamManager for the configured stream.
func (c *Client) NewStreamManager() *StreamManager {
	return NewStreamManager(c.js, c.cfg.Stream, c.logger)
}

// HealthCheck reports whether records can currently be published.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.conn.IsConnected() {
		return fmt.Errorf("%w (%s)", ErrNotConnected, c.conn.Status())
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := c.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("jetstream account info: %w", err)
	}
	return nil
}

// Drain waits for in-flight acks and closes the connection.
func (c *Client) Drain() error {
	return c.conn.Drain()
}
