package inapp

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// recordingBuilder implements Builder and records every setter call.
type recordingBuilder struct {
	calls []string
}

func (r *recordingBuilder) record(name string, v any) {
	r.calls = append(r.calls, name+"="+toString(v))
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case Type:
		return x.String()
	default:
		return "?"
	}
}

func (r *recordingBuilder) SetInAppType(t Type)               { r.record("type", t) }
func (r *recordingBuilder) SetTitleText(s string)             { r.record("title", s) }
func (r *recordingBuilder) SetMessageText(s string)           { r.record("message", s) }
func (r *recordingBuilder) FollowDeviceOrientation(b bool)    { r.record("orientation", b) }
func (r *recordingBuilder) SetPositiveBtnText(s string)       { r.record("positive", s) }
func (r *recordingBuilder) SetNegativeBtnText(s string)       { r.record("negative", s) }
func (r *recordingBuilder) SetFallbackToSettings(b bool)      { r.record("fallback", b) }
func (r *recordingBuilder) SetImageURL(s string)              { r.record("image", s) }
func (r *recordingBuilder) SetBackgroundColor(s string)       { r.record("bg", s) }
func (r *recordingBuilder) SetBtnBorderColor(s string)        { r.record("border", s) }
func (r *recordingBuilder) SetTitleTextColor(s string)        { r.record("titleColor", s) }
func (r *recordingBuilder) SetMessageTextColor(s string)      { r.record("messageColor", s) }
func (r *recordingBuilder) SetBtnTextColor(s string)          { r.record("btnText", s) }
func (r *recordingBuilder) SetBtnBackgroundColor(s string)    { r.record("btnBg", s) }
func (r *recordingBuilder) SetBtnBorderRadius(s string)       { r.record("radius", s) }

func alertParams() Params {
	return Params{
		KeyTitleText:               "Allow notifications?",
		KeyMessageText:             "Stay updated",
		KeyFollowDeviceOrientation: true,
		KeyPositiveButtonText:      "Allow",
		KeyNegativeButtonText:      "Cancel",
		KeyFallbackToSettings:      false,
	}
}

func halfInterstitialParams() Params {
	p := alertParams()
	p[KeyImageURL] = "https://cdn.example.com/bell.png"
	p[KeyBackgroundColor] = "#FFFFFF"
	p[KeyButtonBorderColor] = "#000000"
	p[KeyTitleTextColor] = "#111111"
	p[KeyMessageTextColor] = "#222222"
	p[KeyButtonTextColor] = "#333333"
	p[KeyButtonBackgroundColor] = "#C0C0C0"
	p[KeyButtonBorderRadius] = "4"
	return p
}

var alertKeys = []string{
	KeyTitleText,
	KeyMessageText,
	KeyFollowDeviceOrientation,
	KeyPositiveButtonText,
	KeyNegativeButtonText,
	KeyFallbackToSettings,
}

var styleKeys = []string{
	KeyBackgroundColor,
	KeyButtonBorderColor,
	KeyTitleTextColor,
	KeyMessageTextColor,
	KeyButtonTextColor,
	KeyButtonBackgroundColor,
	KeyButtonBorderRadius,
}

func TestBuildAlertConfig_Scenario(t *testing.T) {
	d, err := BuildAlertConfig(alertParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Descriptor{
		Type:                    TypeAlert,
		TitleText:               "Allow notifications?",
		MessageText:             "Stay updated",
		FollowDeviceOrientation: true,
		PositiveButtonText:      "Allow",
		NegativeButtonText:      "Cancel",
		FallbackToSettings:      false,
	}
	if d != want {
		t.Errorf("descriptor = %+v, want %+v", d, want)
	}
}

func TestBuildAlertConfig_CopiesVerbatim(t *testing.T) {
	p := alertParams()
	p[KeyTitleText] = "  padded title  "
	p[KeyMessageText] = ""
	p[KeyFallbackToSettings] = true

	d, err := BuildAlertConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TitleText != "  padded title  " {
		t.Errorf("TitleText = %q, want untrimmed value", d.TitleText)
	}
	if d.MessageText != "" {
		t.Errorf("MessageText = %q, want empty", d.MessageText)
	}
	if !d.FallbackToSettings {
		t.Error("FallbackToSettings = false, want true")
	}
}

func TestBuildAlertConfig_MissingEachField(t *testing.T) {
	for _, key := range alertKeys {
		t.Run(key, func(t *testing.T) {
			p := alertParams()
			delete(p, key)

			_, err := BuildAlertConfig(p)
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("error = %v, want ErrMissingField", err)
			}

			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("error %v is not a *FieldError", err)
			}
			if fe.Key != key {
				t.Errorf("Key = %q, want %q", fe.Key, key)
			}
		})
	}
}

func TestBuildAlertConfig_WrongType(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "bool for string", key: KeyTitleText, value: true},
		{name: "number for string", key: KeyPositiveButtonText, value: 12.0},
		{name: "string for bool", key: KeyFollowDeviceOrientation, value: "true"},
		{name: "null for bool", key: KeyFallbackToSettings, value: nil},
		{name: "object for string", key: KeyMessageText, value: map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := alertParams()
			p[tt.key] = tt.value

			_, err := BuildAlertConfig(p)
			if !errors.Is(err, ErrWrongType) {
				t.Fatalf("error = %v, want ErrWrongType", err)
			}
			if errors.Is(err, ErrMissingField) {
				t.Error("wrong type must not be reported as missing")
			}
		})
	}
}

func TestBuildAlertConfig_ReportsAllFailures(t *testing.T) {
	p := alertParams()
	delete(p, KeyTitleText)
	p[KeyFallbackToSettings] = "no"

	_, err := BuildAlertConfig(p)
	if !errors.Is(err, ErrMissingField) || !errors.Is(err, ErrWrongType) {
		t.Fatalf("error = %v, want both ErrMissingField and ErrWrongType", err)
	}
	if !strings.Contains(err.Error(), KeyTitleText) || !strings.Contains(err.Error(), KeyFallbackToSettings) {
		t.Errorf("error %q should name both keys", err.Error())
	}
}

func TestApplyAlert_SetterOrder(t *testing.T) {
	b := &recordingBuilder{}
	if err := ApplyAlert(b, alertParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"type=alert-template",
		"title=Allow notifications?",
		"message=Stay updated",
		"orientation=true",
		"positive=Allow",
		"negative=Cancel",
		"fallback=false",
	}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
}

func TestApplyAlert_NoSetterOnFailure(t *testing.T) {
	p := alertParams()
	delete(p, KeyNegativeButtonText)

	b := &recordingBuilder{}
	if err := ApplyAlert(b, p); err == nil {
		t.Fatal("expected error")
	}
	if len(b.calls) != 0 {
		t.Errorf("builder received %d calls on failure, want 0: %v", len(b.calls), b.calls)
	}
}

func TestBuildHalfInterstitialConfig_AllFields(t *testing.T) {
	d, err := BuildHalfInterstitialConfig(halfInterstitialParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Descriptor{
		Type:                    TypeHalfInterstitial,
		TitleText:               "Allow notifications?",
		MessageText:             "Stay updated",
		FollowDeviceOrientation: true,
		PositiveButtonText:      "Allow",
		NegativeButtonText:      "Cancel",
		ImageURL:                "https://cdn.example.com/bell.png",
		BackgroundColor:         "#FFFFFF",
		ButtonBorderColor:       "#000000",
		TitleTextColor:          "#111111",
		MessageTextColor:        "#222222",
		ButtonTextColor:         "#333333",
		ButtonBackgroundColor:   "#C0C0C0",
		ButtonBorderRadius:      "4",
	}
	if d != want {
		t.Errorf("descriptor = %+v, want %+v", d, want)
	}
}

func TestBuildHalfInterstitialConfig_ImageURLDefaultsToEmpty(t *testing.T) {
	p := halfInterstitialParams()
	delete(p, KeyImageURL)

	d, err := BuildHalfInterstitialConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", d.ImageURL)
	}
}

func TestBuildHalfInterstitialConfig_ImageURLWrongType(t *testing.T) {
	p := halfInterstitialParams()
	p[KeyImageURL] = false

	_, err := BuildHalfInterstitialConfig(p)
	if !errors.Is(err, ErrWrongType) {
		t.Fatalf("error = %v, want ErrWrongType", err)
	}
}

func TestBuildHalfInterstitialConfig_MissingMandatoryField(t *testing.T) {
	keys := append(append([]string{}, alertKeys...), styleKeys...)
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			p := halfInterstitialParams()
			delete(p, key)

			_, err := BuildHalfInterstitialConfig(p)
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestBuildHalfInterstitialConfig_ColorsNotValidated(t *testing.T) {
	p := halfInterstitialParams()
	p[KeyBackgroundColor] = "not-a-color"
	p[KeyButtonBorderRadius] = "wide"

	d, err := BuildHalfInterstitialConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.BackgroundColor != "not-a-color" {
		t.Errorf("BackgroundColor = %q, want passthrough", d.BackgroundColor)
	}
	if d.ButtonBorderRadius != "wide" {
		t.Errorf("ButtonBorderRadius = %q, want passthrough", d.ButtonBorderRadius)
	}
}

func TestApplyHalfInterstitial_SetterOrder(t *testing.T) {
	p := halfInterstitialParams()
	delete(p, KeyImageURL)

	b := &recordingBuilder{}
	if err := ApplyHalfInterstitial(b, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"type=half-interstitial",
		"title=Allow notifications?",
		"message=Stay updated",
		"orientation=true",
		"positive=Allow",
		"negative=Cancel",
		"fallback=false",
		"image=",
		"bg=#FFFFFF",
		"border=#000000",
		"titleColor=#111111",
		"messageColor=#222222",
		"btnText=#333333",
		"btnBg=#C0C0C0",
		"radius=4",
	}
	if !reflect.DeepEqual(b.calls, want) {
		t.Errorf("calls = %v, want %v", b.calls, want)
	}
}

func TestApplyHalfInterstitial_NoSetterOnFailure(t *testing.T) {
	p := halfInterstitialParams()
	delete(p, KeyButtonBorderRadius)

	b := &recordingBuilder{}
	if err := ApplyHalfInterstitial(b, p); err == nil {
		t.Fatal("expected error")
	}
	if len(b.calls) != 0 {
		t.Errorf("builder received calls on failure: %v", b.calls)
	}
}

func TestDescriptorBuilder_RequiresType(t *testing.T) {
	b := NewDescriptorBuilder()
	b.SetTitleText("x")
	if _, err := b.Build(); !errors.Is(err, ErrTypeRequired) {
		t.Errorf("Build error = %v, want ErrTypeRequired", err)
	}
}
