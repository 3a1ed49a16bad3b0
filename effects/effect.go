package effects

import (
	"fmt"
	"strings"
)

// Effect selects one of the voice transforms
type Effect int

const (
	Robotic Effect = iota
	Male
	Female
	Baby
	Cartoon
	Echo
	Distorted
	Anonymized

	numEffects
)

// EffectInfo describes an effect for clients
type EffectInfo struct {
	Effect      Effect `json:"-"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var effectInfo = [numEffects]EffectInfo{
	Robotic: {
		Effect:      Robotic,
		Name:        "robotic",
		Title:       "Robotic Voice",
		Description: "Applies ring modulation and pitch flattening for a metallic robot sound",
	},
	Male: {
		Effect:      Male,
		Name:        "male",
		Title:       "Male Voice",
		Description: "Transforms voice to sound more masculine by lowering pitch",
	},
	Female: {
		Effect:      Female,
		Name:        "female",
		Title:       "Female Voice",
		Description: "Enhanced female voice with formant shifting, breathiness, and EQ adjustments",
	},
	Baby: {
		Effect:      Baby,
		Name:        "baby",
		Title:       "Baby Voice",
		Description: "Creates a high-pitched baby-like voice with time stretching",
	},
	Cartoon: {
		Effect:      Cartoon,
		Name:        "cartoon",
		Title:       "Cartoon Voice",
		Description: "Cartoon-like effect with high pitch, frequency manipulation, and modulation",
	},
	Echo: {
		Effect:      Echo,
		Name:        "echo",
		Title:       "Echo Voice",
		Description: "Adds echo effect using FIR filter for spatial depth",
	},
	Distorted: {
		Effect:      Distorted,
		Name:        "distorted",
		Title:       "Distorted Voice",
		Description: "Applies distortion using nonlinear processing and high-pass filtering",
	},
	Anonymized: {
		Effect:      Anonymized,
		Name:        "anonymized",
		Title:       "Anonymized Voice",
		Description: "Anonymous organization-style voice anonymization with pitch lowering, formant shifting, bandpass filtering, and dynamic compression while maintaining intelligibility",
	},
}

// String returns the canonical lowercase name
func (e Effect) String() string {
	if !e.Valid() {
		return fmt.Sprintf("effect(%d)", int(e))
	}
	return effectInfo[e].Name
}

// Valid reports whether e is one of the defined effects
func (e Effect) Valid() bool {
	return e >= 0 && e < numEffects
}

// ParseEffect resolves a name case-insensitively, ignoring surrounding
// whitespace. Unknown names return an error wrapping ErrUnknownEffect.
func ParseEffect(name string) (Effect, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, info := range effectInfo {
		if info.Name == normalized {
			return info.Effect, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEffect, name, strings.Join(Names(), ", "))
}

// Effects lists every effect in canonical order
func Effects() []Effect {
	all := make([]Effect, 0, numEffects)
	for e := range numEffects {
		all = append(all, e)
	}
	return all
}

// Names lists every effect name in canonical order
func Names() []string {
	names := make([]string, 0, numEffects)
	for _, info := range effectInfo {
		names = append(names, info.Name)
	}
	return names
}

// Info returns the metadata of e
func Info(e Effect) (EffectInfo, error) {
	if !e.Valid() {
		return EffectInfo{}, fmt.Errorf("%w: %d", ErrUnknownEffect, int(e))
	}
	return effectInfo[e], nil
}

// Describe returns the metadata of every effect in canonical order
func Describe() []EffectInfo {
	return append([]EffectInfo(nil), effectInfo[:]...)
}
