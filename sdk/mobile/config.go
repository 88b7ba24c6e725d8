package mobile

import (
	"encoding/json"
	"fmt"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/config"
)

// ValidateConfig checks a CleverTap config JSON document.
// Returns empty string on success, or the SDKError as JSON on failure:
//
//	{"code": "INVALID_CONFIG", "message": "project_id is required", "severity": 3}
//
// Example config JSON:
//
//	{"project_id": "TEST-123", "project_token": "abc", "region_code": "eu1"}
func ValidateConfig(configJSON string) string {
	if _, err := config.FromJSON(configJSON); err != nil {
		sdkErr := toSDKError(err, ErrCodeInvalidConfig, SeverityFatal)
		reportError(sdkErr)
		data, mErr := json.Marshal(sdkErr)
		if mErr != nil {
			return wrapError(sdkErr)
		}
		return string(data)
	}
	return ""
}

// ResolveInstanceConfig parses a config JSON document and returns the
// instance config the platform should be initialized with: credentials,
// identity keys and the log level for the current build flavor.
func ResolveInstanceConfig(configJSON string) (string, error) {
	cfg, err := config.FromJSON(configJSON)
	if err != nil {
		sdkErr := toSDKError(err, ErrCodeInvalidConfig, SeverityFatal)
		reportError(sdkErr)
		return "", sdkErr
	}

	data, err := json.Marshal(cfg.InstanceConfig())
	if err != nil {
		return "", fmt.Errorf("marshal instance config: %w", err)
	}
	return string(data), nil
}
