// Package delivery drains the record outbox into a sender on a timer or on
// demand.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/observability"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/storage"
)

// Queue is the persistent outbox. storage.Outbox implements it.
type Queue interface {
	DequeueBatch(n int) ([]storage.Entry, error)
	Delete(ids []int64) error
	MarkRetry(id int64) error
	DeadLetter(ids []int64) error
	Count() (int, error)
}

// Sender publishes entries and returns the IDs of those it accepted.
// nats.Publisher implements it.
type Sender interface {
	PublishBatch(ctx context.Context, entries []storage.Entry) ([]int64, error)
}

// ErrBackingOff is returned by Flush while the flusher waits after a
// failed flush.
var ErrBackingOff = errors.New("delivery: backing off after failed flush")

// Flusher moves records from the outbox to a Sender. Published records are
// deleted; failed records are marked for retry and stay queued until they
// exceed MaxRetries, when they are dead-lettered.
type Flusher struct {
	queue   Queue
	sender  Sender
	cfg     Config
	backoff Backoff
	limiter *rate.Limiter
	metrics *observability.Metrics
	logger  *slog.Logger

	mu           sync.Mutex
	failures     int
	blockedUntil time.Time
	now          func() time.Time

	flushCh  chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// NewFlusher creates a Flusher. metrics may be nil.
func NewFlusher(queue Queue, sender Sender, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Flusher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	cfg = cfg.withDefaults()

	return &Flusher{
		queue:   queue,
		sender:  sender,
		cfg:     cfg,
		backoff: DefaultBackoff,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		metrics: metrics,
		logger:  logger.With("component", "flusher"),
		now:     time.Now,
		flushCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// SetBackoff replaces the backoff used after failed flushes.
func (f *Flusher) SetBackoff(b Backoff) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backoff = b
}

// Trigger requests an asynchronous flush. It never blocks.
func (f *Flusher) Trigger() {
	select {
	case f.flushCh <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued records.
func (f *Flusher) Pending() (int, error) {
	return f.queue.Count()
}

// Flush publishes one batch. It returns ErrBackingOff without touching
// the queue while a previous failure's backoff is in effect.
func (f *Flusher) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.now().Before(f.blockedUntil) {
		return ErrBackingOff
	}

	_, err := f.flushLocked(ctx)
	return err
}

// Drain flushes until the queue is empty, ignoring backoff. It stops at the
// first batch that makes no progress.
func (f *Flusher) Drain(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		n, err := f.flushLocked(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// flushLocked publishes one batch and returns how many records left the
// queue. Caller must hold f.mu.
func (f *Flusher) flushLocked(ctx context.Context) (int, error) {
	entries, err := f.queue.DequeueBatch(f.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("dequeue batch: %w", err)
	}

	entries, dead, err := f.deadLetter(ctx, entries)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return dead, nil
	}

	if err := f.limiter.WaitN(ctx, len(entries)); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	published, sendErr := f.sender.PublishBatch(ctx, entries)

	if len(published) > 0 {
		if err := f.queue.Delete(published); err != nil {
			return 0, fmt.Errorf("delete published records: %w", err)
		}
	}

	failed := f.markFailed(entries, published)
	f.metrics.RecordFlush(ctx, len(entries), len(published), failed, time.Since(start))

	if sendErr != nil || failed > 0 {
		f.failures++
		delay := f.backoff.Delay(f.failures)
		f.blockedUntil = f.now().Add(delay)
		f.logger.Warn("outbox flush incomplete",
			"batch", len(entries),
			"published", len(published),
			"failed", failed,
			"consecutive_failures", f.failures,
			"backoff", delay,
			"error", sendErr,
		)
		if sendErr == nil {
			sendErr = fmt.Errorf("%d of %d records not published", failed, len(entries))
		}
		return dead + len(published), fmt.Errorf("publish batch: %w", sendErr)
	}

	f.failures = 0
	f.blockedUntil = time.Time{}
	f.logger.Debug("outbox flushed", "published", len(published))
	return dead + len(published), nil
}

// deadLetter removes entries that exhausted their retries and returns the
// rest along with how many were removed.
func (f *Flusher) deadLetter(ctx context.Context, entries []storage.Entry) ([]storage.Entry, int, error) {
	if f.cfg.MaxRetries <= 0 {
		return entries, 0, nil
	}

	live := entries[:0:0]
	var dead []int64
	for _, e := range entries {
		if e.RetryCount >= f.cfg.MaxRetries {
			dead = append(dead, e.ID)
			continue
		}
		live = append(live, e)
	}
	if len(dead) == 0 {
		return entries, 0, nil
	}

	if err := f.queue.DeadLetter(dead); err != nil {
		return nil, 0, fmt.Errorf("dead letter records: %w", err)
	}
	f.metrics.RecordDeadLettered(ctx, len(dead))
	f.logger.Warn("records dead-lettered", "count", len(dead), "max_retries", f.cfg.MaxRetries)
	return live, len(dead), nil
}

// markFailed marks every entry not in published for retry and returns how
// many there were.
func (f *Flusher) markFailed(entries []storage.Entry, published []int64) int {
	ok := make(map[int64]struct{}, len(published))
	for _, id := range published {
		ok[id] = struct{}{}
	}

	failed := 0
	for _, e := range entries {
		if _, done := ok[e.ID]; done {
			continue
		}
		failed++
		if err := f.queue.MarkRetry(e.ID); err != nil {
			f.logger.Error("failed to mark record for retry", "outbox_id", e.ID, "error", err)
		}
	}
	return failed
}

// Start runs the flush loop in a background goroutine. The loop flushes on
// the interval ticker and on Trigger, and exits on Stop or when ctx is
// canceled.
func (f *Flusher) Start(ctx context.Context) {
	if !f.started.CompareAndSwap(false, true) {
		return
	}
	go f.run(ctx)
}

func (f *Flusher) run(ctx context.Context) {
	defer close(f.doneCh)

	ticker := time.NewTicker(f.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.flushInLoop(ctx)

		case <-f.flushCh:
			f.flushInLoop(ctx)

		case <-f.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (f *Flusher) flushInLoop(ctx context.Context) {
	err := f.Flush(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrBackingOff):
		f.logger.Debug("flush skipped while backing off")
	default:
		f.logger.Error("outbox flush failed", "error", err)
	}
}

// Stop ends the flush loop and waits for it to exit. Call Drain afterwards
// for a final flush.
func (f *Flusher) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
	if f.started.Load() {
		<-f.doneCh
	}
}
