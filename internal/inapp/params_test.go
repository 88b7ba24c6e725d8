package inapp

import (
	"errors"
	"testing"
)

func TestParseParams_Valid(t *testing.T) {
	p, err := ParseParams(`{"TitleText": "Hi", "FollowDeviceOrientation": true}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p[KeyTitleText] != "Hi" {
		t.Errorf("TitleText = %v, want %q", p[KeyTitleText], "Hi")
	}
	if p[KeyFollowDeviceOrientation] != true {
		t.Errorf("FollowDeviceOrientation = %v, want true", p[KeyFollowDeviceOrientation])
	}
}

func TestParseParams_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   "},
		{name: "malformed", input: `{"TitleText":`},
		{name: "null", input: "null"},
		{name: "array", input: `["TitleText"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseParams(tt.input); !errors.Is(err, ErrInvalidJSON) {
				t.Errorf("error = %v, want ErrInvalidJSON", err)
			}
		})
	}
}

func TestParseParams_NumberFailsAsWrongType(t *testing.T) {
	p, err := ParseParams(`{
		"TitleText": "t", "MessageText": "m", "FollowDeviceOrientation": 1,
		"PositiveButtonText": "y", "NegativeButtonText": "n", "FallbackToSettings": false
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = BuildAlertConfig(p)
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FieldError", err)
	}
	if fe.Key != KeyFollowDeviceOrientation || fe.Got != "number" || fe.Expected != "bool" {
		t.Errorf("FieldError = %+v", fe)
	}
}

func TestFieldError_Message(t *testing.T) {
	missing := &FieldError{Key: "TitleText", Expected: "string", Err: ErrMissingField}
	if got, want := missing.Error(), `missing field: "TitleText" (expected string)`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrong := &FieldError{Key: "FallbackToSettings", Expected: "bool", Got: "string", Err: ErrWrongType}
	if got, want := wrong.Error(), `wrong type: "FallbackToSettings" is string, expected bool`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
