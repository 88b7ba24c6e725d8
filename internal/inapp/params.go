package inapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Params is the loosely typed configuration map handed over by native code.
// Values are expected to be strings or booleans; anything else fails the
// translation of the key it is stored under.
type Params map[string]any

// Config keys understood by the translator.
const (
	KeyTitleText               = "TitleText"
	KeyMessageText             = "MessageText"
	KeyFollowDeviceOrientation = "FollowDeviceOrientation"
	KeyPositiveButtonText      = "PositiveButtonText"
	KeyNegativeButtonText      = "NegativeButtonText"
	KeyFallbackToSettings      = "FallbackToSettings"
	KeyImageURL                = "ImageURL"
	KeyBackgroundColor         = "BackgroundColor"
	KeyButtonBorderColor       = "ButtonBorderColor"
	KeyTitleTextColor          = "TitleTextColor"
	KeyMessageTextColor        = "MessageTextColor"
	KeyButtonTextColor         = "ButtonTextColor"
	KeyButtonBackgroundColor   = "ButtonBackgroundColor"
	KeyButtonBorderRadius      = "ButtonBorderRadius"
)

// ParseParams decodes a JSON object into Params.
func ParseParams(jsonStr string) (Params, error) {
	if strings.TrimSpace(jsonStr) == "" {
		return nil, fmt.Errorf("%w: params JSON is empty", ErrInvalidJSON)
	}

	var p Params
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: params must be a JSON object", ErrInvalidJSON)
	}

	return p, nil
}

// fieldReader reads typed values out of Params and accumulates every
// failure so callers can report all bad keys at once.
type fieldReader struct {
	params Params
	errs   []error
}

func (r *fieldReader) str(key string) string {
	v, ok := r.params[key]
	if !ok {
		r.errs = append(r.errs, &FieldError{Key: key, Expected: "string", Err: ErrMissingField})
		return ""
	}
	return r.asString(key, v)
}

func (r *fieldReader) optionalStr(key, def string) string {
	v, ok := r.params[key]
	if !ok {
		return def
	}
	return r.asString(key, v)
}

func (r *fieldReader) boolean(key string) bool {
	v, ok := r.params[key]
	if !ok {
		r.errs = append(r.errs, &FieldError{Key: key, Expected: "bool", Err: ErrMissingField})
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.errs = append(r.errs, &FieldError{Key: key, Expected: "bool", Got: typeName(v), Err: ErrWrongType})
		return false
	}
	return b
}

func (r *fieldReader) asString(key string, v any) string {
	s, ok := v.(string)
	if !ok {
		r.errs = append(r.errs, &FieldError{Key: key, Expected: "string", Got: typeName(v), Err: ErrWrongType})
		return ""
	}
	return s
}

func (r *fieldReader) err() error {
	return errors.Join(r.errs...)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
