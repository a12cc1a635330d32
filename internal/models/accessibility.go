package models

// FontSize is a UI font-size preference
type FontSize string

const (
	FontSizeNormal     FontSize = "normal"
	FontSizeLarge      FontSize = "large"
	FontSizeExtraLarge FontSize = "extra-large"
)

// AccessibilitySettings holds per-user accessibility preferences
type AccessibilitySettings struct {
	HighContrast     bool     `json:"highContrast"`
	SubtitlesEnabled bool     `json:"subtitlesEnabled"`
	SoundEnabled     bool     `json:"soundEnabled"`
	FontSize         FontSize `json:"fontSize"`
	ReducedMotion    bool     `json:"reducedMotion"`
}

// DefaultAccessibilitySettings returns the settings assigned to a new account
func DefaultAccessibilitySettings() AccessibilitySettings {
	return AccessibilitySettings{
		HighContrast:     false,
		SubtitlesEnabled: true,
		SoundEnabled:     true,
		FontSize:         FontSizeNormal,
		ReducedMotion:    false,
	}
}

// AccessibilityUpdate is a partial update; nil fields are left unchanged
type AccessibilityUpdate struct {
	HighContrast     *bool     `json:"highContrast"`
	SubtitlesEnabled *bool     `json:"subtitlesEnabled"`
	SoundEnabled     *bool     `json:"soundEnabled"`
	FontSize         *FontSize `json:"fontSize"`
	ReducedMotion    *bool     `json:"reducedMotion"`
}

// Apply merges a partial update into the settings
func (s *AccessibilitySettings) Apply(update AccessibilityUpdate) {
	if update.HighContrast != nil {
		s.HighContrast = *update.HighContrast
	}
	if update.SubtitlesEnabled != nil {
		s.SubtitlesEnabled = *update.SubtitlesEnabled
	}
	if update.SoundEnabled != nil {
		s.SoundEnabled = *update.SoundEnabled
	}
	if update.FontSize != nil {
		s.FontSize = *update.FontSize
	}
	if update.ReducedMotion != nil {
		s.ReducedMotion = *update.ReducedMotion
	}
}
