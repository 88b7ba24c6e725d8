package instance

import (
	"log/slog"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/inapp"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/properties"
)

// Null is the instance returned when no real instance could be created.
// Every call logs a warning and does nothing.
type Null struct {
	logger *slog.Logger
}

// NewNull returns a Null instance logging to logger.
func NewNull(logger *slog.Logger) *Null {
	if logger == nil {
		logger = slog.Default()
	}
	return &Null{logger: logger.With("component", "null-instance")}
}

func (n *Null) warn(op string) {
	n.logger.Warn("call on uninitialized CleverTap instance ignored", "op", op)
}

func (n *Null) CleverTapID() string {
	n.warn("CleverTapID")
	return ""
}

func (n *Null) OnUserLogin(properties.Properties) error {
	n.warn("OnUserLogin")
	return nil
}

func (n *Null) OnUserLoginWithID(properties.Properties, string) error {
	n.warn("OnUserLoginWithID")
	return nil
}

func (n *Null) PushProfile(properties.Properties) error {
	n.warn("PushProfile")
	return nil
}

func (n *Null) PushEvent(string, properties.Properties) error {
	n.warn("PushEvent")
	return nil
}

func (n *Null) PushChargedEvent(properties.Properties, []properties.Properties) error {
	n.warn("PushChargedEvent")
	return nil
}

func (n *Null) PromptForPushPermission(bool) error {
	n.warn("PromptForPushPermission")
	return nil
}

func (n *Null) PromptForPushPrimer(inapp.Descriptor) error {
	n.warn("PromptForPushPrimer")
	return nil
}
