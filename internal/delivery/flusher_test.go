package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/storage"
)

// --- Mock implementations ---

// mockQueue implements Queue for testing.
type mockQueue struct {
	mu          sync.Mutex
	entries     []storage.Entry
	nextID      int64
	deleteCalls int
	retryCalls  int
	dead        []int64

	dequeueErr error
}

func newMockQueue(n int) *mockQueue {
	q := &mockQueue{nextID: 1}
	for i := 0; i < n; i++ {
		q.entries = append(q.entries, storage.Entry{
			ID:             q.nextID,
			Kind:           "event",
			RecordJSON:     fmt.Sprintf(`{"n":%d}`, i),
			IdempotencyKey: fmt.Sprintf("key-%d", i),
		})
		q.nextID++
	}
	return q
}

func (q *mockQueue) DequeueBatch(n int) ([]storage.Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.dequeueErr != nil {
		return nil, q.dequeueErr
	}

	limit := min(n, len(q.entries))
	result := make([]storage.Entry, limit)
	copy(result, q.entries[:limit])
	return result, nil
}

func (q *mockQueue) Delete(ids []int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleteCalls++

	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	remaining := q.entries[:0]
	for _, e := range q.entries {
		if !drop[e.ID] {
			remaining = append(remaining, e)
		}
	}
	q.entries = remaining
	return nil
}

func (q *mockQueue) MarkRetry(id int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retryCalls++

	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries[i].RetryCount++
			return nil
		}
	}
	return fmt.Errorf("entry %d not found", id)
}

func (q *mockQueue) DeadLetter(ids []int64) error {
	q.mu.Lock()
	q.dead = append(q.dead, ids...)
	q.mu.Unlock()
	return q.Delete(ids)
}

func (q *mockQueue) Count() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries), nil
}

// mockSender implements Sender for testing.
type mockSender struct {
	mu     sync.Mutex
	calls  int
	reject map[int64]bool
	err    error
}

func (s *mockSender) PublishBatch(_ context.Context, entries []storage.Entry) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	published := make([]int64, 0, len(entries))
	for _, e := range entries {
		if !s.reject[e.ID] {
			published = append(published, e.ID)
		}
	}
	if len(published) < len(entries) {
		return published, errors.New("partial publish")
	}
	return published, nil
}

func (s *mockSender) getCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testConfig() Config {
	return Config{BatchSize: 10, FlushInterval: time.Hour, RateLimit: 10000, RateBurst: 10}
}

// --- Tests ---

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{BatchSize: 100}.withDefaults()
	if cfg.RateBurst != 100 {
		t.Errorf("RateBurst = %d, want raised to batch size", cfg.RateBurst)
	}
	if cfg.FlushInterval != 5*time.Second {
		t.Errorf("FlushInterval = %v, want 5s", cfg.FlushInterval)
	}
	if DefaultConfig().MaxRetries != 10 {
		t.Errorf("default MaxRetries = %d, want 10", DefaultConfig().MaxRetries)
	}
}

func TestFlush_PublishesAndDeletes(t *testing.T) {
	q := newMockQueue(3)
	s := &mockSender{}
	f := NewFlusher(q, s, testConfig(), nil, nil)

	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, _ := q.Count(); n != 0 {
		t.Errorf("remaining = %d, want 0", n)
	}
	if s.getCalls() != 1 {
		t.Errorf("PublishBatch calls = %d, want 1", s.getCalls())
	}
}

func TestFlush_EmptyQueue(t *testing.T) {
	q := newMockQueue(0)
	s := &mockSender{}
	f := NewFlusher(q, s, testConfig(), nil, nil)

	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.getCalls() != 0 {
		t.Errorf("PublishBatch should not be called on an empty queue")
	}
}

func TestFlush_PartialFailureKeepsFailed(t *testing.T) {
	q := newMockQueue(4)
	s := &mockSender{reject: map[int64]bool{2: true, 4: true}}
	f := NewFlusher(q, s, testConfig(), nil, nil)

	if err := f.Flush(context.Background()); err == nil {
		t.Fatal("expected error from partial publish")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) != 2 || q.entries[0].ID != 2 || q.entries[1].ID != 4 {
		t.Fatalf("remaining = %+v, want entries 2 and 4", q.entries)
	}
	for _, e := range q.entries {
		if e.RetryCount != 1 {
			t.Errorf("entry %d retry count = %d, want 1", e.ID, e.RetryCount)
		}
	}
	if q.retryCalls != 2 {
		t.Errorf("retry calls = %d, want 2", q.retryCalls)
	}
}

func TestFlush_BacksOffAfterFailure(t *testing.T) {
	q := newMockQueue(2)
	s := &mockSender{err: errors.New("no responders")}
	f := NewFlusher(q, s, testConfig(), nil, nil)
	f.SetBackoff(Backoff{BaseDelay: time.Minute, MaxDelay: time.Hour})

	now := time.Unix(1000, 0)
	f.now = func() time.Time { return now }

	if err := f.Flush(context.Background()); err == nil {
		t.Fatal("expected error from failed publish")
	}
	if err := f.Flush(context.Background()); !errors.Is(err, ErrBackingOff) {
		t.Fatalf("error = %v, want ErrBackingOff", err)
	}
	if s.getCalls() != 1 {
		t.Errorf("PublishBatch calls = %d, want 1 while backing off", s.getCalls())
	}

	now = now.Add(2 * time.Minute)
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()

	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("flush after backoff: %v", err)
	}
	if n, _ := q.Count(); n != 0 {
		t.Errorf("remaining = %d, want 0", n)
	}
}

func TestFlush_DeadLettersExhaustedRecords(t *testing.T) {
	q := newMockQueue(3)
	q.entries[0].RetryCount = 3
	q.entries[2].RetryCount = 5
	s := &mockSender{}
	cfg := testConfig()
	cfg.MaxRetries = 3
	f := NewFlusher(q, s, cfg, nil, nil)

	if err := f.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.dead) != 2 || q.dead[0] != 1 || q.dead[1] != 3 {
		t.Errorf("dead-lettered = %v, want [1 3]", q.dead)
	}
	if len(q.entries) != 0 {
		t.Errorf("remaining = %d, want 0", len(q.entries))
	}
	if s.calls != 1 {
		t.Errorf("PublishBatch calls = %d, want 1", s.calls)
	}
}

func TestDrain_AllDeadLettered(t *testing.T) {
	q := newMockQueue(2)
	for i := range q.entries {
		q.entries[i].RetryCount = 1
	}
	s := &mockSender{}
	cfg := testConfig()
	cfg.MaxRetries = 1
	f := NewFlusher(q, s, cfg, nil, nil)

	if err := f.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if s.getCalls() != 0 {
		t.Errorf("PublishBatch calls = %d, want 0", s.getCalls())
	}
	if n, _ := q.Count(); n != 0 {
		t.Errorf("remaining = %d, want 0", n)
	}
}

func TestFlush_DequeueError(t *testing.T) {
	q := newMockQueue(0)
	q.dequeueErr = errors.New("db error")
	f := NewFlusher(q, &mockSender{}, testConfig(), nil, nil)

	if err := f.Flush(context.Background()); err == nil {
		t.Fatal("expected error from dequeue failure")
	}
}

func TestDrain_EmptiesQueue(t *testing.T) {
	q := newMockQueue(25)
	s := &mockSender{}
	f := NewFlusher(q, s, testConfig(), nil, nil)

	if err := f.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n, _ := q.Count(); n != 0 {
		t.Errorf("remaining = %d, want 0", n)
	}
	// 10 + 10 + 5, then one empty dequeue.
	if s.getCalls() != 3 {
		t.Errorf("PublishBatch calls = %d, want 3", s.getCalls())
	}
}

func TestDrain_StopsOnFailure(t *testing.T) {
	q := newMockQueue(5)
	s := &mockSender{err: errors.New("no responders")}
	f := NewFlusher(q, s, testConfig(), nil, nil)

	if err := f.Drain(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if s.getCalls() != 1 {
		t.Errorf("PublishBatch calls = %d, want 1", s.getCalls())
	}
}

func TestFlushLoop_Trigger(t *testing.T) {
	q := newMockQueue(3)
	s := &mockSender{}
	f := NewFlusher(q, s, testConfig(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.Start(ctx)
	f.Trigger()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, _ := q.Count(); n == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	f.Stop()

	if n, _ := q.Count(); n != 0 {
		t.Errorf("remaining = %d, want 0 after triggered flush", n)
	}
}

func TestFlushLoop_PeriodicFlush(t *testing.T) {
	q := newMockQueue(3)
	s := &mockSender{}
	cfg := testConfig()
	cfg.FlushInterval = 20 * time.Millisecond
	f := NewFlusher(q, s, cfg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.Start(ctx)

	time.Sleep(150 * time.Millisecond)
	f.Stop()

	if s.getCalls() < 1 {
		t.Errorf("expected at least one periodic flush")
	}
	if n, _ := q.Count(); n != 0 {
		t.Errorf("remaining = %d, want 0", n)
	}
}

func TestStop_WithoutStart(t *testing.T) {
	f := NewFlusher(newMockQueue(0), &mockSender{}, testConfig(), nil, nil)

	done := make(chan struct{})
	go func() {
		f.Stop()
		f.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running loop")
	}
}

func TestFlush_WithSQLiteOutbox(t *testing.T) {
	db, err := storage.Open(t.TempDir() + "/outbox.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	outbox := storage.NewOutbox(db, 100)
	for i := 0; i < 3; i++ {
		if err := outbox.Enqueue("event", fmt.Sprintf(`{"n":%d}`, i), fmt.Sprintf("k%d", i)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	f := NewFlusher(outbox, &mockSender{}, testConfig(), nil, nil)
	if err := f.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if n, err := outbox.Count(); err != nil || n != 0 {
		t.Errorf("Count = %d, %v; want 0", n, err)
	}
}
