package inapp

import (
	"encoding/json"
	"fmt"
)

// Type selects the in-app message variant.
type Type int

const (
	TypeUnknown Type = iota
	TypeAlert
	TypeHalfInterstitial
)

// String returns the template name the SDK uses for the variant.
func (t Type) String() string {
	switch t {
	case TypeAlert:
		return "alert-template"
	case TypeHalfInterstitial:
		return "half-interstitial"
	default:
		return "unknown"
	}
}

// Descriptor is a fully configured in-app message. It is built once by the
// translator and handed to the presentation layer; nothing retains it.
type Descriptor struct {
	Type Type

	TitleText               string
	MessageText             string
	FollowDeviceOrientation bool
	PositiveButtonText      string
	NegativeButtonText      string
	FallbackToSettings      bool

	// Half-interstitial only.
	ImageURL              string
	BackgroundColor       string
	ButtonBorderColor     string
	TitleTextColor        string
	MessageTextColor      string
	ButtonTextColor       string
	ButtonBackgroundColor string
	ButtonBorderRadius    string
}

type wireText struct {
	Text  string `json:"text"`
	Color string `json:"color,omitempty"`
}

type wireButton struct {
	Text   string `json:"text"`
	Color  string `json:"color,omitempty"`
	BG     string `json:"bg,omitempty"`
	Border string `json:"border,omitempty"`
	Radius string `json:"radius,omitempty"`
}

type wireInApp struct {
	Type                           string       `json:"type"`
	IsLocalInApp                   bool         `json:"isLocalInApp"`
	FallbackToNotificationSettings bool         `json:"fallbackToNotificationSettings"`
	HasPortrait                    bool         `json:"hasPortrait"`
	HasLandscape                   bool         `json:"hasLandscape"`
	Title                          wireText     `json:"title"`
	Message                        wireText     `json:"message"`
	BG                             string       `json:"bg,omitempty"`
	ImageURL                       string       `json:"imageUrl,omitempty"`
	Buttons                        []wireButton `json:"buttons"`
}

// MarshalJSON renders the descriptor as a local in-app JSON object.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d.Type != TypeAlert && d.Type != TypeHalfInterstitial {
		return nil, fmt.Errorf("marshal descriptor: %w", ErrTypeRequired)
	}

	w := wireInApp{
		Type:                           d.Type.String(),
		IsLocalInApp:                   true,
		FallbackToNotificationSettings: d.FallbackToSettings,
		HasPortrait:                    true,
		HasLandscape:                   d.FollowDeviceOrientation,
		Title:                          wireText{Text: d.TitleText},
		Message:                        wireText{Text: d.MessageText},
		Buttons: []wireButton{
			{Text: d.PositiveButtonText},
			{Text: d.NegativeButtonText},
		},
	}

	if d.Type == TypeHalfInterstitial {
		w.Title.Color = d.TitleTextColor
		w.Message.Color = d.MessageTextColor
		w.BG = d.BackgroundColor
		w.ImageURL = d.ImageURL
		for i := range w.Buttons {
			w.Buttons[i].Color = d.ButtonTextColor
			w.Buttons[i].BG = d.ButtonBackgroundColor
			w.Buttons[i].Border = d.ButtonBorderColor
			w.Buttons[i].Radius = d.ButtonBorderRadius
		}
	}

	return json.Marshal(w)
}
