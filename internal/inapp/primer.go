package inapp

import "fmt"

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Named colors used as push primer defaults.
var (
	White  = Color{R: 255, G: 255, B: 255, A: 255}
	Black  = Color{A: 255}
	Silver = Color{R: 192, G: 192, B: 192, A: 255}
)

// Hex renders the color as #RRGGBB. Alpha is dropped: the SDK parses
// eight digit colors as #AARRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// PushPrimerAlertConfig configures an alert style push primer.
type PushPrimerAlertConfig struct {
	TitleText          string
	MessageText        string
	PositiveButtonText string
	NegativeButtonText string

	FollowDeviceOrientation bool

	// FallbackToSettings routes the user to the app's notification settings
	// when permission was previously denied.
	FallbackToSettings bool
}

// DefaultPushPrimerAlertConfig returns an alert config with default flags.
func DefaultPushPrimerAlertConfig() PushPrimerAlertConfig {
	return PushPrimerAlertConfig{FollowDeviceOrientation: true}
}

// Params converts the config into translator parameters.
func (c PushPrimerAlertConfig) Params() Params {
	return Params{
		KeyTitleText:               c.TitleText,
		KeyMessageText:             c.MessageText,
		KeyFollowDeviceOrientation: c.FollowDeviceOrientation,
		KeyPositiveButtonText:      c.PositiveButtonText,
		KeyNegativeButtonText:      c.NegativeButtonText,
		KeyFallbackToSettings:      c.FallbackToSettings,
	}
}

// PushPrimerHalfInterstitialConfig configures a half-interstitial push primer.
type PushPrimerHalfInterstitialConfig struct {
	TitleText          string
	MessageText        string
	PositiveButtonText string
	NegativeButtonText string
	ImageURL           string

	BackgroundColor       Color
	ButtonBorderColor     Color
	TitleTextColor        Color
	MessageTextColor      Color
	ButtonTextColor       Color
	ButtonBackgroundColor Color
	ButtonBorderRadius    string

	FollowDeviceOrientation bool
	FallbackToSettings      bool
}

// DefaultPushPrimerHalfInterstitialConfig returns a half-interstitial config
// with the default palette.
func DefaultPushPrimerHalfInterstitialConfig() PushPrimerHalfInterstitialConfig {
	return PushPrimerHalfInterstitialConfig{
		BackgroundColor:         White,
		ButtonBorderColor:       Black,
		TitleTextColor:          Black,
		MessageTextColor:        Black,
		ButtonTextColor:         Black,
		ButtonBackgroundColor:   Silver,
		FollowDeviceOrientation: true,
	}
}

// Params converts the config into translator parameters. ImageURL is left
// out when empty.
func (c PushPrimerHalfInterstitialConfig) Params() Params {
	p := Params{
		KeyTitleText:               c.TitleText,
		KeyMessageText:             c.MessageText,
		KeyFollowDeviceOrientation: c.FollowDeviceOrientation,
		KeyPositiveButtonText:      c.PositiveButtonText,
		KeyNegativeButtonText:      c.NegativeButtonText,
		KeyFallbackToSettings:      c.FallbackToSettings,
		KeyBackgroundColor:         c.BackgroundColor.Hex(),
		KeyButtonBorderColor:       c.ButtonBorderColor.Hex(),
		KeyTitleTextColor:          c.TitleTextColor.Hex(),
		KeyMessageTextColor:        c.MessageTextColor.Hex(),
		KeyButtonTextColor:         c.ButtonTextColor.Hex(),
		KeyButtonBackgroundColor:   c.ButtonBackgroundColor.Hex(),
		KeyButtonBorderRadius:      c.ButtonBorderRadius,
	}
	if c.ImageURL != "" {
		p[KeyImageURL] = c.ImageURL
	}
	return p
}
