package tts

import "context"

// Synthesizer speaks one utterance at a time.
//
// Implementations report progress through the onEvent callback passed to
// Speak. The callback must never be invoked from inside Speak, Pause, Resume
// or Stop; deliver events from another goroutine. Stop must not wait for
// pending events to be delivered.
type Synthesizer interface {
	// Speak starts speaking req, pre-empting any utterance in flight.
	Speak(req Utterance, onEvent func(Event)) error

	// Pause holds the current utterance.
	Pause() error

	// Resume continues a paused utterance.
	Resume() error

	// Stop cancels the current utterance, if any.
	Stop() error
}

// VoiceLister is implemented by synthesizers that can enumerate voices.
type VoiceLister interface {
	Voices(ctx context.Context) ([]Voice, error)
}

// TextSource supplies the text to read.
type TextSource interface {
	// Text returns the text to read. It may be empty.
	Text(ctx context.Context) (string, error)
}

// PreferenceStore persists voice preferences.
type PreferenceStore interface {
	// Get returns the stored preferences, with unset fields taken from
	// defaults.
	Get(defaults Preferences) (Preferences, error)

	// Set merges the non-nil fields of update into the stored preferences.
	Set(update PreferencesUpdate) error
}

// Utterance is a single speak request.
type Utterance struct {
	ID      uint64  // Session generation the utterance belongs to
	Text    string  // Text to speak, already trimmed
	Voice   string  // Voice name, empty for the backend default
	Lang    string  // BCP 47 locale
	Rate    float64 // Speech rate multiplier (1.0 = normal)
	Pitch   float64 // Pitch (1.0 = normal)
	Enqueue bool    // Always false; a new request pre-empts the old one
}

// EventType identifies a synthesizer lifecycle event.
type EventType int

const (
	EventStart EventType = iota
	EventWord
	EventEnd
	EventPause
	EventResume
	EventCancelled
	EventInterrupted
	EventError
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventWord:
		return "word"
	case EventEnd:
		return "end"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventCancelled:
		return "cancelled"
	case EventInterrupted:
		return "interrupted"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification for one utterance.
type Event struct {
	Utterance uint64    // Generation of the utterance the event belongs to
	Type      EventType // What happened
	CharIndex int       // Word events: byte offset into Utterance.Text
	Err       error     // Error events: what went wrong
}

// Voice describes a voice offered by a synthesizer.
type Voice struct {
	Name  string // Voice identifier passed back in Utterance.Voice
	Lang  string // BCP 47 locale, e.g. "en-US"
	Local bool   // Synthesized on this machine
}
