package tts

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/tts/normalize"
	"github.com/dgnsrekt/readaloud/tts/sentence"
)

// DefaultLocale is the language sent with every utterance.
const DefaultLocale = "en-US"

// SessionConfig holds session settings.
type SessionConfig struct {
	Locale     string
	Navigation NavigationPolicy
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Locale:     DefaultLocale,
		Navigation: DefaultNavigationPolicy(),
	}
}

// Snapshot is a copy of the session's observable state.
type Snapshot struct {
	Seq         uint64 // Increases with every change; later snapshots have larger values
	State       StateType
	Text        string
	Offset      int
	Sentence    int // Index of the sentence containing Offset
	Sentences   []sentence.Boundary
	Paragraph   int // Index of the paragraph containing Offset
	Paragraphs  []sentence.Boundary
	Preferences Preferences
}

// CurrentSentence returns the text of the sentence being read.
func (s Snapshot) CurrentSentence() string {
	if s.Sentence < 0 || s.Sentence >= len(s.Sentences) {
		return ""
	}
	return s.Sentences[s.Sentence].Text(s.Text)
}

// Session reads one text at a time through a Synthesizer.
//
// A session owns the normalized text, the current read position, the
// sentence and paragraph boundaries and the playback state. Commands are
// expected one at a time from a dispatcher; synthesizer events may arrive
// from any goroutine. Every utterance is tagged with a generation number and
// events from superseded generations are dropped.
type Session struct {
	mu sync.Mutex

	synth  Synthesizer
	store  PreferenceStore
	logger *log.Logger
	now    func() time.Time
	locale string

	text       string
	charIndex  int
	base       int // Offset of the first byte of the active utterance text
	sentences  []sentence.Boundary
	paragraphs []sentence.Boundary
	prefs      Preferences

	machine    *StateMachine
	generation uint64
	navigators map[Granularity]*Navigator

	observers  []func(Snapshot)
	seq        uint64
	pending    []Snapshot // Snapshots not yet handed to observers, oldest first
	delivering bool       // A goroutine is draining pending
}

// NewSession creates a stopped session speaking through synth.
func NewSession(synth Synthesizer, cfg SessionConfig) *Session {
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.Navigation == (NavigationPolicy{}) {
		cfg.Navigation = DefaultNavigationPolicy()
	}

	s := &Session{
		synth:   synth,
		logger:  log.Default().WithPrefix("session"),
		now:     time.Now,
		locale:  cfg.Locale,
		prefs:   DefaultPreferences(),
		machine: NewStateMachine(),
		navigators: map[Granularity]*Navigator{
			Sentence:  NewNavigator(cfg.Navigation),
			Paragraph: NewNavigator(cfg.Navigation),
		},
	}
	s.machine.OnChange(func(from, to StateType) {
		s.logger.Debug("state", "from", from, "to", to)
	})
	return s
}

// SetLogger replaces the session logger.
func (s *Session) SetLogger(l *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = l
}

// SetClock replaces the time source used by navigation.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetPreferenceStore sets where StartReading looks up preferences.
func (s *Session) SetPreferenceStore(store PreferenceStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// OnChange registers an observer called after every command and event. It
// runs outside the session lock and may call back into the session.
// Observers see snapshots one at a time in Seq order, even when commands
// and events race.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// update runs fn under the lock, then notifies observers. Only one
// goroutine delivers at a time; it drains snapshots queued by others, so
// an update made while another goroutine is delivering returns without
// waiting.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	s.seq++
	s.pending = append(s.pending, s.snapshotLocked())
	if s.delivering {
		s.mu.Unlock()
		return
	}

	s.delivering = true
	for len(s.pending) > 0 {
		batch, observers := s.pending, s.observers
		s.pending = nil
		s.mu.Unlock()
		for _, snap := range batch {
			for _, o := range observers {
				o(snap)
			}
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// Load starts reading rawText from the beginning with prefs. Any active
// utterance is stopped first. Text that normalizes to nothing is logged and
// leaves the session stopped.
func (s *Session) Load(rawText string, prefs Preferences) {
	s.update(func() {
		s.stopLocked()

		text := normalize.Normalize(rawText)
		if text == "" {
			s.logger.Warn("nothing to read", "raw_length", len(rawText))
			return
		}

		s.text = text
		s.charIndex = 0
		s.base = 0
		s.sentences = sentence.Sentences(text)
		s.paragraphs = sentence.Paragraphs(text)
		s.prefs = prefs
		s.logger.Debug("loaded",
			"length", len(text),
			"sentences", len(s.sentences),
			"paragraphs", len(s.paragraphs))

		s.speakFromLocked(0)
	})
}

// StartReading loads text with the stored preferences.
func (s *Session) StartReading(text string) {
	s.Load(text, s.preferences())
}

// ReadFrom stops playback, then reads whatever src supplies. A source
// failure is logged and leaves the session stopped.
func (s *Session) ReadFrom(ctx context.Context, src TextSource) {
	s.Stop()

	text, err := src.Text(ctx)
	if err != nil {
		s.log().Warn("could not get text", "err", err)
		return
	}
	s.StartReading(text)
}

// preferences resolves the stored preferences, falling back to defaults.
func (s *Session) preferences() Preferences {
	s.mu.Lock()
	store, logger := s.store, s.logger
	s.mu.Unlock()

	defaults := DefaultPreferences()
	if store == nil {
		return defaults
	}
	prefs, err := store.Get(defaults)
	if err != nil {
		logger.Warn("could not load preferences", "err", err)
		return defaults
	}
	return prefs
}

// SetPreferences changes the voice settings. They take effect with the next
// utterance.
func (s *Session) SetPreferences(prefs Preferences) {
	s.update(func() {
		s.prefs = prefs
	})
}

// TogglePause pauses a playing session and resumes a paused one. It does
// nothing when stopped.
func (s *Session) TogglePause() {
	s.update(func() {
		switch s.machine.Current() {
		case StatePlaying:
			if err := s.synth.Pause(); err != nil {
				s.logger.Warn("pause failed", "err", err)
				return
			}
			s.setStateLocked(StatePaused)
		case StatePaused:
			if err := s.synth.Resume(); err != nil {
				s.logger.Warn("resume failed", "err", err)
				return
			}
			s.setStateLocked(StatePlaying)
		default:
			s.logger.Debug("toggle pause ignored", "state", s.machine.Current())
		}
	})
}

// RestartSentence jumps to the start of the current or previous sentence.
func (s *Session) RestartSentence() {
	s.restart(Sentence)
}

// RestartParagraph jumps to the start of the current or previous paragraph.
func (s *Session) RestartParagraph() {
	s.restart(Paragraph)
}

func (s *Session) restart(g Granularity) {
	s.update(func() {
		if s.machine.Current() == StateStopped || s.text == "" {
			s.logger.Debug("restart ignored", "granularity", g, "state", s.machine.Current())
			return
		}
		target := s.navigators[g].Target(s.boundariesLocked(g), s.charIndex, s.now())
		s.logger.Debug("restart", "granularity", g, "from", s.charIndex, "to", target)
		s.speakFromLocked(target)
	})
}

// NextSentence jumps to the start of the following sentence. In the last
// sentence it does nothing.
func (s *Session) NextSentence() {
	s.update(func() {
		if s.machine.Current() == StateStopped || s.text == "" {
			s.logger.Debug("next ignored", "state", s.machine.Current())
			return
		}
		k := sentence.Locate(s.sentences, s.charIndex)
		if k+1 >= len(s.sentences) {
			s.logger.Debug("next ignored: last sentence", "sentence", k)
			return
		}
		s.speakFromLocked(s.sentences[k+1].Start)
	})
}

// Stop cancels the active utterance. The text stays loaded.
func (s *Session) Stop() {
	s.update(func() {
		s.stopLocked()
	})
}

// State returns the playback state.
func (s *Session) State() StateType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

// Offset returns the byte offset of the last known spoken position.
func (s *Session) Offset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charIndex
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// HandleEvent applies a synthesizer event. Events for any generation but the
// current one are ignored.
func (s *Session) HandleEvent(ev Event) {
	s.update(func() {
		if ev.Utterance != s.generation {
			s.logger.Debug("stale event", "type", ev.Type, "utterance", ev.Utterance, "current", s.generation)
			return
		}

		switch ev.Type {
		case EventStart:
			// A pause issued before the engine got going wins.
			if s.machine.Current() != StatePaused {
				s.setStateLocked(StatePlaying)
			}
		case EventWord:
			s.charIndex = s.wordOffsetLocked(ev.CharIndex)
		case EventEnd, EventCancelled, EventInterrupted:
			s.setStateLocked(StateStopped)
		case EventPause:
			s.setStateLocked(StatePaused)
		case EventResume:
			s.setStateLocked(StatePlaying)
		case EventError:
			s.logger.Error("synthesis failed", "utterance", ev.Utterance, "err", ev.Err)
			s.setStateLocked(StateStopped)
		default:
			s.logger.Debug("unknown event", "type", ev.Type)
		}
	})
}

// speakFromLocked pre-empts the active utterance and speaks the text from
// offset onward. Past the last non-blank byte it leaves the session stopped.
func (s *Session) speakFromLocked(offset int) {
	s.stopLocked()

	offset = runeStart(s.text, offset)
	rest := s.text[offset:]
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" {
		s.logger.Debug("end of text", "offset", offset)
		return
	}

	s.charIndex = offset
	s.base = offset + len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))

	gen := s.generation
	req := Utterance{
		ID:      gen,
		Text:    trimmed,
		Voice:   s.prefs.VoiceName,
		Lang:    s.locale,
		Rate:    s.prefs.Rate,
		Pitch:   s.prefs.Pitch,
		Enqueue: false,
	}
	// Events are re-tagged so backends need not track generations.
	onEvent := func(ev Event) {
		ev.Utterance = gen
		s.HandleEvent(ev)
	}

	s.logger.Debug("speak", "utterance", gen, "offset", offset, "length", len(trimmed))
	if err := s.synth.Speak(req, onEvent); err != nil {
		s.logger.Error("speak failed", "utterance", gen, "err", err)
		s.setStateLocked(StateStopped)
		return
	}
	s.setStateLocked(StatePlaying)
}

// stopLocked supersedes the current generation and stops the synthesizer.
func (s *Session) stopLocked() {
	s.generation++
	if err := s.synth.Stop(); err != nil {
		s.logger.Debug("stop failed", "err", err)
	}
	s.setStateLocked(StateStopped)
}

func (s *Session) setStateLocked(to StateType) {
	if from := s.machine.Current(); !s.machine.Transition(to) {
		s.logger.Debug("transition rejected", "from", from, "to", to)
	}
}

// wordOffsetLocked maps an offset into the utterance text back into the
// session text.
func (s *Session) wordOffsetLocked(rel int) int {
	if rel < 0 {
		rel = 0
	}
	idx := s.base + rel
	if idx > len(s.text) {
		idx = len(s.text)
	}
	return idx
}

func (s *Session) boundariesLocked(g Granularity) []sentence.Boundary {
	if g == Paragraph {
		return s.paragraphs
	}
	return s.sentences
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:         s.seq,
		State:       s.machine.Current(),
		Text:        s.text,
		Offset:      s.charIndex,
		Sentence:    sentence.Locate(s.sentences, s.charIndex),
		Sentences:   s.sentences,
		Paragraph:   sentence.Locate(s.paragraphs, s.charIndex),
		Paragraphs:  s.paragraphs,
		Preferences: s.prefs,
	}
}

func (s *Session) log() *log.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// runeStart moves offset back to the start of the rune it points into,
// clamped to the text.
func runeStart(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(text) {
		return len(text)
	}
	for offset > 0 && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}
