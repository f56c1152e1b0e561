package tts

import (
	"sort"
	"strings"
)

// EnglishVoices returns the English voices, local ones first, each group
// sorted by name.
func EnglishVoices(voices []Voice) []Voice {
	out := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Local != out[j].Local {
			return out[i].Local
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Label is the display name of a voice.
func (v Voice) Label() string {
	label := v.Name
	if v.Lang != "" {
		label += " (" + v.Lang + ")"
	}
	if !v.Local {
		label += " (remote)"
	}
	return label
}
