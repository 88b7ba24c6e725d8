// Package config holds CleverTap project configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

// Sentinel errors for the config package.
var (
	ErrProjectIDRequired    = errors.New("project_id is required")
	ErrProjectTokenRequired = errors.New("project_token is required")
	ErrUnknownLogLevel      = errors.New("unknown log level")
)

// DefaultIdentityKeys are the profile fields that identify a user.
const DefaultIdentityKeys = "Identity,Email,Phone"

// Config holds CleverTap configuration loaded from the environment or from
// a JSON document passed across the bridge.
type Config struct {
	// ProjectID is the project ID from the CleverTap dashboard.
	ProjectID string `env:"PROJECT_ID" json:"project_id"`

	// ProjectToken is the project token from the CleverTap dashboard.
	ProjectToken string `env:"PROJECT_TOKEN" json:"project_token"`

	// RegionCode is the region of the project's data center.
	RegionCode string `env:"REGION_CODE" json:"region_code,omitempty"`

	// IdentityKeys is a comma separated list of profile fields used to
	// uniquely identify the user.
	IdentityKeys string `env:"IDENTITY_KEYS" envDefault:"Identity,Email,Phone" json:"identity_keys,omitempty"`

	// AutoInitializeSharedInstance sets up the shared instance when the
	// subsystem starts.
	AutoInitializeSharedInstance bool `env:"AUTO_INITIALIZE" envDefault:"true" json:"auto_initialize"`

	// UseCustomCleverTapID must be true when a custom CleverTap ID is
	// supplied at login.
	UseCustomCleverTapID bool `env:"USE_CUSTOM_CLEVERTAP_ID" envDefault:"false" json:"use_custom_clevertap_id,omitempty"`

	DevelopmentLogLevel LogLevel `env:"DEVELOPMENT_LOG_LEVEL" envDefault:"VERBOSE" json:"development_log_level"`
	ShippingLogLevel    LogLevel `env:"SHIPPING_LOG_LEVEL" envDefault:"OFF" json:"shipping_log_level"`

	// Shipping selects ShippingLogLevel over DevelopmentLogLevel.
	Shipping bool `env:"SHIPPING" envDefault:"false" json:"shipping,omitempty"`
}

// InstanceConfig is the subset of Config needed to create an instance.
type InstanceConfig struct {
	ProjectID    string   `json:"project_id"`
	ProjectToken string   `json:"project_token"`
	RegionCode   string   `json:"region_code,omitempty"`
	IdentityKeys string   `json:"identity_keys,omitempty"`
	LogLevel     LogLevel `json:"log_level"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		IdentityKeys:                 DefaultIdentityKeys,
		AutoInitializeSharedInstance: true,
		DevelopmentLogLevel:          LogLevelVerbose,
		ShippingLogLevel:             LogLevelOff,
	}
}

// Load parses CLEVERTAP_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "CLEVERTAP_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// FromJSON parses a JSON config, applying defaults for absent fields.
func FromJSON(jsonStr string) (Config, error) {
	cfg := Default()
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that the project credentials are set.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return ErrProjectIDRequired
	}
	if strings.TrimSpace(c.ProjectToken) == "" {
		return ErrProjectTokenRequired
	}
	return nil
}

// ActiveLogLevel returns the log level for the current build flavor.
func (c Config) ActiveLogLevel() LogLevel {
	if c.Shipping {
		return c.ShippingLogLevel
	}
	return c.DevelopmentLogLevel
}

// InstanceConfig derives the instance configuration.
func (c Config) InstanceConfig() InstanceConfig {
	return InstanceConfig{
		ProjectID:    c.ProjectID,
		ProjectToken: c.ProjectToken,
		RegionCode:   c.RegionCode,
		IdentityKeys: c.IdentityKeys,
		LogLevel:     c.ActiveLogLevel(),
	}
}

// Validate checks that the project credentials are set.
func (ic InstanceConfig) Validate() error {
	if strings.TrimSpace(ic.ProjectID) == "" {
		return ErrProjectIDRequired
	}
	if strings.TrimSpace(ic.ProjectToken) == "" {
		return ErrProjectTokenRequired
	}
	return nil
}

// IdentityKeyList splits IdentityKeys on commas, dropping empty entries.
func (ic InstanceConfig) IdentityKeyList() []string {
	keys := []string{}
	for _, k := range strings.Split(ic.IdentityKeys, ",") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
