package instance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/config"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/inapp"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/observability"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/properties"
)

// Record kinds written to the outbox.
const (
	KindLogin          = "login"
	KindProfile        = "profile"
	KindEvent          = "event"
	KindCharged        = "charged"
	KindPushPermission = "push_permission"
	KindPushPrimer     = "push_primer"
)

// cleverTapIDKey is the KV key holding the generated CleverTap ID.
const cleverTapIDKey = "clevertap_id"

// Record is the unit of data the queued platform emits.
type Record struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	ProjectID   string `json:"project_id"`
	RegionCode  string `json:"region_code,omitempty"`
	CleverTapID string `json:"clevertap_id"`
	Name        string `json:"name,omitempty"`
	Payload     any    `json:"payload,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Outbox is where records are queued for delivery. storage.Outbox
// implements it.
type Outbox interface {
	Enqueue(kind, recordJSON, idempotencyKey string) error
}

// KeyValueStore persists small values across restarts. storage.DB
// implements it.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// QueuedPlatform is a Platform that serializes every instance call into a
// Record and appends it to an outbox for asynchronous delivery.
type QueuedPlatform struct {
	outbox  Outbox
	kv      KeyValueStore
	metrics *observability.Metrics
	logger  *slog.Logger
	level   *slog.LevelVar
}

// NewQueuedPlatform returns a QueuedPlatform. metrics may be nil.
func NewQueuedPlatform(outbox Outbox, kv KeyValueStore, metrics *observability.Metrics, logger *slog.Logger) *QueuedPlatform {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}

	level := new(slog.LevelVar)
	level.Set(config.LogLevelInfo.SlogLevel())

	return &QueuedPlatform{
		outbox:  outbox,
		kv:      kv,
		metrics: metrics,
		logger:  slog.New(levelHandler{level: level, next: logger.Handler()}).With("component", "queued-platform"),
		level:   level,
	}
}

// SetLogLevel sets the platform's logging threshold.
func (p *QueuedPlatform) SetLogLevel(level config.LogLevel) {
	p.level.Set(level.SlogLevel())
}

// NewInstance creates an instance using the persisted CleverTap ID,
// generating one on first use.
func (p *QueuedPlatform) NewInstance(ctx context.Context, cfg config.InstanceConfig) (Instance, error) {
	id, ok, err := p.kv.Get(ctx, cleverTapIDKey)
	if err != nil {
		return nil, fmt.Errorf("load clevertap id: %w", err)
	}
	if !ok {
		id = newCleverTapID()
		if err := p.kv.Set(ctx, cleverTapIDKey, id); err != nil {
			return nil, fmt.Errorf("store clevertap id: %w", err)
		}
	}
	return p.newInstance(cfg, id), nil
}

// NewInstanceWithID creates an instance bound to a custom CleverTap ID.
func (p *QueuedPlatform) NewInstanceWithID(ctx context.Context, cfg config.InstanceConfig, cleverTapID string) (Instance, error) {
	if cleverTapID == "" {
		return nil, ErrCleverTapIDEmpty
	}
	if err := p.kv.Set(ctx, cleverTapIDKey, cleverTapID); err != nil {
		return nil, fmt.Errorf("store clevertap id: %w", err)
	}
	return p.newInstance(cfg, cleverTapID), nil
}

func (p *QueuedPlatform) newInstance(cfg config.InstanceConfig, id string) *queuedInstance {
	p.logger.Info("queued instance created", "project_id", cfg.ProjectID, "clevertap_id", id)
	return &queuedInstance{
		platform:    p,
		cfg:         cfg,
		cleverTapID: id,
		logger:      p.logger.With("project_id", cfg.ProjectID),
	}
}

// newCleverTapID returns a generated ID in the SDK's "__<hex>" form.
func newCleverTapID() string {
	return "__" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

type queuedInstance struct {
	platform *QueuedPlatform
	cfg      config.InstanceConfig
	logger   *slog.Logger

	mu          sync.RWMutex
	cleverTapID string
}

func (q *queuedInstance) CleverTapID() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.cleverTapID
}

func (q *queuedInstance) OnUserLogin(profile properties.Properties) error {
	return q.enqueueProperties(KindLogin, "", profile)
}

func (q *queuedInstance) OnUserLoginWithID(profile properties.Properties, cleverTapID string) error {
	if cleverTapID == "" {
		return ErrCleverTapIDEmpty
	}
	if err := q.platform.kv.Set(context.Background(), cleverTapIDKey, cleverTapID); err != nil {
		return fmt.Errorf("store clevertap id: %w", err)
	}

	q.mu.Lock()
	q.cleverTapID = cleverTapID
	q.mu.Unlock()

	return q.enqueueProperties(KindLogin, "", profile)
}

func (q *queuedInstance) PushProfile(profile properties.Properties) error {
	return q.enqueueProperties(KindProfile, "", profile)
}

func (q *queuedInstance) PushEvent(name string, actions properties.Properties) error {
	if strings.TrimSpace(name) == "" {
		return ErrEventNameRequired
	}
	return q.enqueueProperties(KindEvent, name, actions)
}

func (q *queuedInstance) PushChargedEvent(details properties.Properties, items []properties.Properties) error {
	normDetails, err := details.Normalize()
	if err != nil {
		return fmt.Errorf("charge details: %w", err)
	}

	normItems := make([]map[string]any, 0, len(items))
	for i, item := range items {
		n, err := item.Normalize()
		if err != nil {
			return fmt.Errorf("charged item %d: %w", i, err)
		}
		normItems = append(normItems, n)
	}

	return q.enqueue(KindCharged, "Charged", map[string]any{
		"details": normDetails,
		"items":   normItems,
	})
}

func (q *queuedInstance) PromptForPushPermission(fallbackToSettings bool) error {
	return q.enqueue(KindPushPermission, "", map[string]any{
		"fallback_to_settings": fallbackToSettings,
	})
}

func (q *queuedInstance) PromptForPushPrimer(primer inapp.Descriptor) error {
	data, err := json.Marshal(primer)
	if err != nil {
		return fmt.Errorf("push primer: %w", err)
	}
	return q.enqueue(KindPushPrimer, primer.Type.String(), json.RawMessage(data))
}

func (q *queuedInstance) enqueueProperties(kind, name string, props properties.Properties) error {
	payload, err := props.Normalize()
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return q.enqueue(kind, name, payload)
}

func (q *queuedInstance) enqueue(kind, name string, payload any) error {
	rec := Record{
		ID:          uuid.New().String(),
		Kind:        kind,
		ProjectID:   q.cfg.ProjectID,
		RegionCode:  q.cfg.RegionCode,
		CleverTapID: q.CleverTapID(),
		Name:        name,
		Payload:     payload,
		Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := q.platform.outbox.Enqueue(kind, string(data), rec.ID); err != nil {
		return fmt.Errorf("enqueue %s record: %w", kind, err)
	}

	q.platform.metrics.RecordEnqueued(context.Background(), kind)
	q.logger.Debug("record queued", "kind", kind, "record_id", rec.ID, "name", name)
	return nil
}

// levelHandler filters records below a dynamic level before passing them to
// the wrapped handler.
type levelHandler struct {
	level slog.Leveler
	next  slog.Handler
}

func (h levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.next.Enabled(ctx, l)
}

func (h levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelHandler{level: h.level, next: h.next.WithAttrs(attrs)}
}

func (h levelHandler) WithGroup(name string) slog.Handler {
	return levelHandler{level: h.level, next: h.next.WithGroup(name)}
}
