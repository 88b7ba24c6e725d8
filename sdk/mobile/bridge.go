package mobile

import (
	"context"
	"encoding/json"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/inapp"
)

// BuildPushPrimerAlertConfig translates alert push primer parameters into
// the local in-app JSON the CleverTap SDK expects.
//
// Example params JSON:
//
//	{"TitleText": "Get notified", "MessageText": "Please enable notifications",
//	 "FollowDeviceOrientation": true, "PositiveButtonText": "Allow",
//	 "NegativeButtonText": "Cancel", "FallbackToSettings": true}
func BuildPushPrimerAlertConfig(paramsJSON string) (string, error) {
	return buildPushPrimer(paramsJSON, inapp.TypeAlert, inapp.BuildAlertConfig)
}

// BuildPushPrimerHalfInterstitialConfig translates half-interstitial push
// primer parameters into the local in-app JSON the CleverTap SDK expects.
// Besides the alert fields it requires the color and border radius fields;
// ImageURL is optional.
func BuildPushPrimerHalfInterstitialConfig(paramsJSON string) (string, error) {
	return buildPushPrimer(paramsJSON, inapp.TypeHalfInterstitial, inapp.BuildHalfInterstitialConfig)
}

func buildPushPrimer(paramsJSON string, t inapp.Type, build func(inapp.Params) (inapp.Descriptor, error)) (string, error) {
	ctx := context.Background()
	m := currentMetrics()

	out, err := translate(paramsJSON, build)
	if err != nil {
		m.RecordTranslation(ctx, t.String(), false)
		sdkErr := toSDKError(err, ErrCodeInvalidJSON, SeverityCritical)
		reportError(sdkErr)
		return "", sdkErr
	}

	m.RecordTranslation(ctx, t.String(), true)
	if debugMode.Load() {
		logger().Debug("push primer built", "type", t.String())
	}
	return out, nil
}

func translate(paramsJSON string, build func(inapp.Params) (inapp.Descriptor, error)) (string, error) {
	params, err := inapp.ParseParams(paramsJSON)
	if err != nil {
		return "", err
	}

	d, err := build(params)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
