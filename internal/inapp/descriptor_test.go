package inapp

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDescriptor_MarshalAlert(t *testing.T) {
	d, err := BuildAlertConfig(alertParams())
	if err != nil {
		t.Fatalf("BuildAlertConfig: %v", err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got["type"] != "alert-template" {
		t.Errorf("type = %v, want alert-template", got["type"])
	}
	if got["isLocalInApp"] != true {
		t.Errorf("isLocalInApp = %v, want true", got["isLocalInApp"])
	}
	if got["hasLandscape"] != true {
		t.Errorf("hasLandscape = %v, want true", got["hasLandscape"])
	}
	if got["fallbackToNotificationSettings"] != false {
		t.Errorf("fallbackToNotificationSettings = %v, want false", got["fallbackToNotificationSettings"])
	}
	if _, ok := got["bg"]; ok {
		t.Error("alert must not carry a background color")
	}
	if _, ok := got["imageUrl"]; ok {
		t.Error("alert must not carry an image URL")
	}

	buttons, ok := got["buttons"].([]any)
	if !ok || len(buttons) != 2 {
		t.Fatalf("buttons = %v, want 2 entries", got["buttons"])
	}
	positive := buttons[0].(map[string]any)
	if positive["text"] != "Allow" {
		t.Errorf("positive text = %v, want Allow", positive["text"])
	}
	if _, ok := positive["radius"]; ok {
		t.Error("alert buttons must not carry styling")
	}
}

func TestDescriptor_MarshalHalfInterstitial(t *testing.T) {
	d, err := BuildHalfInterstitialConfig(halfInterstitialParams())
	if err != nil {
		t.Fatalf("BuildHalfInterstitialConfig: %v", err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got struct {
		Type     string `json:"type"`
		BG       string `json:"bg"`
		ImageURL string `json:"imageUrl"`
		Title    struct {
			Text  string `json:"text"`
			Color string `json:"color"`
		} `json:"title"`
		Buttons []struct {
			Text   string `json:"text"`
			Color  string `json:"color"`
			BG     string `json:"bg"`
			Border string `json:"border"`
			Radius string `json:"radius"`
		} `json:"buttons"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Type != "half-interstitial" {
		t.Errorf("type = %q", got.Type)
	}
	if got.BG != "#FFFFFF" {
		t.Errorf("bg = %q, want #FFFFFF", got.BG)
	}
	if got.ImageURL != "https://cdn.example.com/bell.png" {
		t.Errorf("imageUrl = %q", got.ImageURL)
	}
	if got.Title.Color != "#111111" {
		t.Errorf("title color = %q, want #111111", got.Title.Color)
	}
	if len(got.Buttons) != 2 {
		t.Fatalf("buttons = %d, want 2", len(got.Buttons))
	}
	for i, b := range got.Buttons {
		if b.Color != "#333333" || b.BG != "#C0C0C0" || b.Border != "#000000" || b.Radius != "4" {
			t.Errorf("button %d styling = %+v", i, b)
		}
	}
	if got.Buttons[1].Text != "Cancel" {
		t.Errorf("negative text = %q, want Cancel", got.Buttons[1].Text)
	}
}

func TestDescriptor_MarshalUnknownType(t *testing.T) {
	_, err := json.Marshal(Descriptor{TitleText: "x"})
	if !errors.Is(err, ErrTypeRequired) {
		t.Errorf("error = %v, want ErrTypeRequired", err)
	}
}
