// Package inapp translates loosely typed push primer parameters into local
// in-app message descriptors.
//
// The SDK builder has no optional steps, so each variant reads every key up
// front and then calls every setter in a fixed order. A translation either
// succeeds completely or calls no setter at all.
package inapp

type alertFields struct {
	titleText          string
	messageText        string
	followOrientation  bool
	positiveButtonText string
	negativeButtonText string
	fallbackToSettings bool
}

type halfInterstitialFields struct {
	alertFields
	imageURL              string
	backgroundColor       string
	buttonBorderColor     string
	titleTextColor        string
	messageTextColor      string
	buttonTextColor       string
	buttonBackgroundColor string
	buttonBorderRadius    string
}

func readAlert(r *fieldReader) alertFields {
	return alertFields{
		titleText:          r.str(KeyTitleText),
		messageText:        r.str(KeyMessageText),
		followOrientation:  r.boolean(KeyFollowDeviceOrientation),
		positiveButtonText: r.str(KeyPositiveButtonText),
		negativeButtonText: r.str(KeyNegativeButtonText),
		fallbackToSettings: r.boolean(KeyFallbackToSettings),
	}
}

func (f alertFields) apply(b Builder) {
	b.SetTitleText(f.titleText)
	b.SetMessageText(f.messageText)
	b.FollowDeviceOrientation(f.followOrientation)
	b.SetPositiveBtnText(f.positiveButtonText)
	b.SetNegativeBtnText(f.negativeButtonText)
	b.SetFallbackToSettings(f.fallbackToSettings)
}

// ApplyAlert configures b as an alert from params.
func ApplyAlert(b Builder, params Params) error {
	r := &fieldReader{params: params}
	f := readAlert(r)
	if err := r.err(); err != nil {
		return err
	}

	b.SetInAppType(TypeAlert)
	f.apply(b)
	return nil
}

// ApplyHalfInterstitial configures b as a half-interstitial from params.
// ImageURL is the only optional key and defaults to the empty string.
func ApplyHalfInterstitial(b Builder, params Params) error {
	r := &fieldReader{params: params}
	f := halfInterstitialFields{
		alertFields:           readAlert(r),
		imageURL:              r.optionalStr(KeyImageURL, ""),
		backgroundColor:       r.str(KeyBackgroundColor),
		buttonBorderColor:     r.str(KeyButtonBorderColor),
		titleTextColor:        r.str(KeyTitleTextColor),
		messageTextColor:      r.str(KeyMessageTextColor),
		buttonTextColor:       r.str(KeyButtonTextColor),
		buttonBackgroundColor: r.str(KeyButtonBackgroundColor),
		buttonBorderRadius:    r.str(KeyButtonBorderRadius),
	}
	if err := r.err(); err != nil {
		return err
	}

	b.SetInAppType(TypeHalfInterstitial)
	f.alertFields.apply(b)
	b.SetImageURL(f.imageURL)
	b.SetBackgroundColor(f.backgroundColor)
	b.SetBtnBorderColor(f.buttonBorderColor)
	b.SetTitleTextColor(f.titleTextColor)
	b.SetMessageTextColor(f.messageTextColor)
	b.SetBtnTextColor(f.buttonTextColor)
	b.SetBtnBackgroundColor(f.buttonBackgroundColor)
	b.SetBtnBorderRadius(f.buttonBorderRadius)
	return nil
}

// BuildAlertConfig translates params into an alert descriptor.
func BuildAlertConfig(params Params) (Descriptor, error) {
	b := NewDescriptorBuilder()
	if err := ApplyAlert(b, params); err != nil {
		return Descriptor{}, err
	}
	return b.Build()
}

// BuildHalfInterstitialConfig translates params into a half-interstitial
// descriptor.
func BuildHalfInterstitialConfig(params Params) (Descriptor, error) {
	b := NewDescriptorBuilder()
	if err := ApplyHalfInterstitial(b, params); err != nil {
		return Descriptor{}, err
	}
	return b.Build()
}
