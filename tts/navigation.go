package tts

import (
	"time"

	"github.com/dgnsrekt/readaloud/tts/sentence"
)

// Granularity is the unit a navigation command moves by.
type Granularity int

const (
	// Sentence navigation.
	Sentence Granularity = iota
	// Paragraph navigation.
	Paragraph
)

// String returns the granularity name.
func (g Granularity) String() string {
	switch g {
	case Sentence:
		return "sentence"
	case Paragraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Navigation defaults.
const (
	DefaultRapidRepeatWindow  = 1500 * time.Millisecond
	DefaultNearStartThreshold = 0.25
)

// NavigationPolicy decides where a restart command lands.
//
// A restart goes back to the previous unit when the listener repeats the
// command within RapidRepeatWindow, or when less than NearStartThreshold of
// the current unit has been read. Otherwise it restarts the current unit.
type NavigationPolicy struct {
	RapidRepeatWindow  time.Duration
	NearStartThreshold float64
}

// DefaultNavigationPolicy returns the 1.5s / 25% policy.
func DefaultNavigationPolicy() NavigationPolicy {
	return NavigationPolicy{
		RapidRepeatWindow:  DefaultRapidRepeatWindow,
		NearStartThreshold: DefaultNearStartThreshold,
	}
}

// Decide returns the byte offset to restart from and the timestamp to
// remember for the next command of the same granularity. The timestamp is
// always now, so rapid taps walk back one unit per tap. A zero last means no
// earlier command.
func (p NavigationPolicy) Decide(boundaries []sentence.Boundary, offset int, now, last time.Time) (int, time.Time) {
	if len(boundaries) == 0 {
		return 0, now
	}

	k := sentence.Locate(boundaries, offset)
	pct := sentence.PercentRead(boundaries, k, offset)
	rapid := !last.IsZero() && now.Sub(last) < p.RapidRepeatWindow

	if (rapid || pct < p.NearStartThreshold) && k > 0 {
		return boundaries[k-1].Start, now
	}
	return boundaries[k].Start, now
}

// Navigator applies a policy with its own timestamp memory. Sessions keep
// one per granularity so sentence and paragraph commands never affect each
// other.
type Navigator struct {
	Policy NavigationPolicy
	last   time.Time
}

// NewNavigator creates a navigator with no history.
func NewNavigator(policy NavigationPolicy) *Navigator {
	return &Navigator{Policy: policy}
}

// Target decides the restart offset and remembers now.
func (n *Navigator) Target(boundaries []sentence.Boundary, offset int, now time.Time) int {
	target, last := n.Policy.Decide(boundaries, offset, now, n.last)
	n.last = last
	return target
}

// Last returns the time of the previous command, zero if none.
func (n *Navigator) Last() time.Time {
	return n.last
}
