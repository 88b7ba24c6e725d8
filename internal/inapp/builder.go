package inapp

// Builder is the construction contract of the SDK's local in-app builder.
// The translator drives it; tests substitute a recording fake.
type Builder interface {
	SetInAppType(t Type)
	SetTitleText(text string)
	SetMessageText(text string)
	FollowDeviceOrientation(follow bool)
	SetPositiveBtnText(text string)
	SetNegativeBtnText(text string)
	SetFallbackToSettings(fallback bool)
	SetImageURL(url string)
	SetBackgroundColor(color string)
	SetBtnBorderColor(color string)
	SetTitleTextColor(color string)
	SetMessageTextColor(color string)
	SetBtnTextColor(color string)
	SetBtnBackgroundColor(color string)
	SetBtnBorderRadius(radius string)
}

// DescriptorBuilder is the Builder that produces a Descriptor.
type DescriptorBuilder struct {
	d Descriptor
}

// NewDescriptorBuilder returns an empty builder.
func NewDescriptorBuilder() *DescriptorBuilder {
	return &DescriptorBuilder{}
}

func (b *DescriptorBuilder) SetInAppType(t Type)              { b.d.Type = t }
func (b *DescriptorBuilder) SetTitleText(text string)         { b.d.TitleText = text }
func (b *DescriptorBuilder) SetMessageText(text string)       { b.d.MessageText = text }
func (b *DescriptorBuilder) FollowDeviceOrientation(f bool)   { b.d.FollowDeviceOrientation = f }
func (b *DescriptorBuilder) SetPositiveBtnText(text string)   { b.d.PositiveButtonText = text }
func (b *DescriptorBuilder) SetNegativeBtnText(text string)   { b.d.NegativeButtonText = text }
func (b *DescriptorBuilder) SetFallbackToSettings(f bool)     { b.d.FallbackToSettings = f }
func (b *DescriptorBuilder) SetImageURL(url string)           { b.d.ImageURL = url }
func (b *DescriptorBuilder) SetBackgroundColor(color string)  { b.d.BackgroundColor = color }
func (b *DescriptorBuilder) SetBtnBorderColor(color string)   { b.d.ButtonBorderColor = color }
func (b *DescriptorBuilder) SetTitleTextColor(color string)   { b.d.TitleTextColor = color }
func (b *DescriptorBuilder) SetMessageTextColor(color string) { b.d.MessageTextColor = color }
func (b *DescriptorBuilder) SetBtnTextColor(color string)     { b.d.ButtonTextColor = color }
func (b *DescriptorBuilder) SetBtnBackgroundColor(c string)   { b.d.ButtonBackgroundColor = c }
func (b *DescriptorBuilder) SetBtnBorderRadius(r string)      { b.d.ButtonBorderRadius = r }

// Build returns the configured descriptor.
func (b *DescriptorBuilder) Build() (Descriptor, error) {
	if b.d.Type != TypeAlert && b.d.Type != TypeHalfInterstitial {
		return Descriptor{}, ErrTypeRequired
	}
	return b.d, nil
}
