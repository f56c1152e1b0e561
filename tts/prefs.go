package tts

import "fmt"

// Preference limits.
const (
	MinRate  = 0.1
	MaxRate  = 10.0
	MinPitch = 0.0
	MaxPitch = 2.0
)

// Preferences are the listener's voice settings.
type Preferences struct {
	VoiceName string  `yaml:"voiceName"`
	Rate      float64 `yaml:"rate"`
	Pitch     float64 `yaml:"pitch"`
}

// DefaultPreferences returns the backend default voice at normal rate and
// pitch.
func DefaultPreferences() Preferences {
	return Preferences{VoiceName: "", Rate: 1.0, Pitch: 1.0}
}

// Validate checks rate and pitch ranges.
func (p Preferences) Validate() error {
	if p.Rate < MinRate || p.Rate > MaxRate {
		return fmt.Errorf("%w: rate %.2f outside %.1f-%.1f", ErrInvalidPreferences, p.Rate, MinRate, MaxRate)
	}
	if p.Pitch < MinPitch || p.Pitch > MaxPitch {
		return fmt.Errorf("%w: pitch %.2f outside %.1f-%.1f", ErrInvalidPreferences, p.Pitch, MinPitch, MaxPitch)
	}
	return nil
}

// PreferencesUpdate is a partial change to Preferences. Nil fields are left
// alone.
type PreferencesUpdate struct {
	VoiceName *string
	Rate      *float64
	Pitch     *float64
}

// Apply returns p with the set fields of u applied.
func (u PreferencesUpdate) Apply(p Preferences) Preferences {
	if u.VoiceName != nil {
		p.VoiceName = *u.VoiceName
	}
	if u.Rate != nil {
		p.Rate = *u.Rate
	}
	if u.Pitch != nil {
		p.Pitch = *u.Pitch
	}
	return p
}

// IsEmpty reports whether the update changes nothing.
func (u PreferencesUpdate) IsEmpty() bool {
	return u.VoiceName == nil && u.Rate == nil && u.Pitch == nil
}
