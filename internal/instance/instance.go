// Package instance manages the shared CleverTap instance and the platform
// backends that create it.
package instance

import (
	"context"
	"errors"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/config"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/inapp"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/properties"
)

// Sentinel errors for the instance package.
var (
	ErrEventNameRequired = errors.New("event name is required")
	ErrCleverTapIDEmpty  = errors.New("clevertap id must not be empty")
)

// Instance is a CleverTap API instance.
type Instance interface {
	// CleverTapID returns the identifier assigned to the user profile.
	CleverTapID() string

	OnUserLogin(profile properties.Properties) error
	OnUserLoginWithID(profile properties.Properties, cleverTapID string) error
	PushProfile(profile properties.Properties) error
	PushEvent(name string, actions properties.Properties) error
	PushChargedEvent(details properties.Properties, items []properties.Properties) error

	// PromptForPushPermission asks the OS for notification permission
	// without a primer.
	PromptForPushPermission(fallbackToSettings bool) error

	// PromptForPushPrimer shows a push primer in-app before asking for
	// permission.
	PromptForPushPrimer(primer inapp.Descriptor) error
}

// Platform creates instances for one host platform.
type Platform interface {
	NewInstance(ctx context.Context, cfg config.InstanceConfig) (Instance, error)
	NewInstanceWithID(ctx context.Context, cfg config.InstanceConfig, cleverTapID string) (Instance, error)
	SetLogLevel(level config.LogLevel)
}
