package instance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/config"
)

// Subsystem owns the shared CleverTap instance. It is safe for concurrent
// use; the shared instance is created at most once.
type Subsystem struct {
	platform Platform
	config   config.Config
	logger   *slog.Logger
	null     *Null

	mu     sync.Mutex
	shared Instance
}

// NewSubsystem returns a Subsystem creating instances on platform. cfg is
// used whenever no explicit instance config is given.
func NewSubsystem(platform Platform, cfg config.Config, logger *slog.Logger) *Subsystem {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "subsystem")
	return &Subsystem{
		platform: platform,
		config:   cfg,
		logger:   logger,
		null:     NewNull(logger),
	}
}

// Start initializes the shared instance when the config asks for it.
func (s *Subsystem) Start(ctx context.Context) error {
	if !s.config.AutoInitializeSharedInstance {
		return nil
	}
	_, err := s.InitializeSharedInstance(ctx)
	return err
}

// InitializeSharedInstance creates the shared instance from the default
// config.
func (s *Subsystem) InitializeSharedInstance(ctx context.Context) (Instance, error) {
	return s.InitializeSharedInstanceWithConfig(ctx, s.config.InstanceConfig())
}

// InitializeSharedInstanceWithConfig creates the shared instance from cfg.
// If the instance already exists it is returned unchanged. An invalid
// config yields the Null instance, which is not stored.
func (s *Subsystem) InitializeSharedInstanceWithConfig(ctx context.Context, cfg config.InstanceConfig) (Instance, error) {
	return s.initialize(ctx, cfg, "")
}

// InitializeSharedInstanceWithID is InitializeSharedInstanceWithConfig with
// a custom CleverTap ID. An empty ID falls back to the generated one.
func (s *Subsystem) InitializeSharedInstanceWithID(ctx context.Context, cfg config.InstanceConfig, cleverTapID string) (Instance, error) {
	if cleverTapID == "" {
		s.logger.Warn("empty CleverTap ID passed to initialization, using the generated ID")
	}
	return s.initialize(ctx, cfg, cleverTapID)
}

func (s *Subsystem) initialize(ctx context.Context, cfg config.InstanceConfig, cleverTapID string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shared != nil {
		return s.shared, nil
	}

	if err := cfg.Validate(); err != nil {
		s.logger.Error("invalid CleverTap config, initialization will not occur", "error", err)
		return s.null, nil
	}

	s.platform.SetLogLevel(cfg.LogLevel)

	var (
		inst Instance
		err  error
	)
	if cleverTapID == "" {
		s.logger.Info("initializing the shared CleverTap instance", "project_id", cfg.ProjectID)
		inst, err = s.platform.NewInstance(ctx, cfg)
	} else {
		s.logger.Info("initializing the shared CleverTap instance with CleverTap ID",
			"project_id", cfg.ProjectID,
			"clevertap_id", cleverTapID,
		)
		inst, err = s.platform.NewInstanceWithID(ctx, cfg, cleverTapID)
	}
	if err != nil {
		return s.null, fmt.Errorf("initialize shared instance: %w", err)
	}

	s.shared = inst
	return inst, nil
}

// SharedInstance returns the shared instance, initializing it from the
// default config on first use.
func (s *Subsystem) SharedInstance(ctx context.Context) (Instance, error) {
	s.mu.Lock()
	inst := s.shared
	s.mu.Unlock()

	if inst != nil {
		return inst, nil
	}
	return s.InitializeSharedInstance(ctx)
}

// IsSharedInstanceInitialized reports whether the shared instance exists.
func (s *Subsystem) IsSharedInstanceInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shared != nil
}

// SetLogLevel changes the platform log level.
func (s *Subsystem) SetLogLevel(level config.LogLevel) {
	s.platform.SetLogLevel(level)
}
