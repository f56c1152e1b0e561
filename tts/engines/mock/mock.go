// Package mock provides a scripted synthesizer for tests and dry runs.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/sentence"
)

// MockEngine implements tts.Synthesizer without producing sound.
//
// By default it only records calls; tests drive the lifecycle with Emit. In
// auto mode it plays each utterance on a timer, emitting start, one word
// event per word and end.
type MockEngine struct {
	mu sync.Mutex

	// Recorded calls
	requests []tts.Utterance
	onEvent  func(tts.Event)
	calls    map[string]int

	// Control for testing
	shouldFail   bool
	failureError error

	// Auto mode
	wordDelay time.Duration
	paused    bool
	cancel    chan struct{}

	available bool
}

// New creates a mock engine that only records calls.
func New() *MockEngine {
	return &MockEngine{
		calls:     make(map[string]int),
		available: true,
	}
}

// NewAuto creates a mock engine that speaks one word every wordDelay.
func NewAuto(wordDelay time.Duration) *MockEngine {
	e := New()
	e.wordDelay = wordDelay
	return e
}

// Speak records req. In auto mode it also starts a playback goroutine.
func (e *MockEngine) Speak(req tts.Utterance, onEvent func(tts.Event)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls["speak"]++
	if e.shouldFail {
		return e.failureError
	}

	e.requests = append(e.requests, req)
	e.onEvent = onEvent
	e.paused = false

	if e.wordDelay > 0 {
		e.cancelLocked()
		e.cancel = make(chan struct{})
		go e.play(req, onEvent, e.cancel)
	}
	return nil
}

// Pause records the call and holds auto playback.
func (e *MockEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls["pause"]++
	e.paused = true
	return nil
}

// Resume records the call and continues auto playback.
func (e *MockEngine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls["resume"]++
	e.paused = false
	return nil
}

// Stop records the call and cancels auto playback.
func (e *MockEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls["stop"]++
	e.cancelLocked()
	return nil
}

func (e *MockEngine) cancelLocked() {
	if e.cancel != nil {
		close(e.cancel)
		e.cancel = nil
	}
}

// play walks the words of req at wordDelay per word.
func (e *MockEngine) play(req tts.Utterance, onEvent func(tts.Event), cancel <-chan struct{}) {
	ticker := time.NewTicker(e.wordDelay)
	defer ticker.Stop()

	emit := func(ev tts.Event) {
		ev.Utterance = req.ID
		onEvent(ev)
	}

	emit(tts.Event{Type: tts.EventStart})
	words := sentence.WordStarts(req.Text)
	for i := 0; i < len(words); {
		select {
		case <-cancel:
			emit(tts.Event{Type: tts.EventCancelled})
			return
		case <-ticker.C:
			if e.isPaused() {
				continue
			}
			emit(tts.Event{Type: tts.EventWord, CharIndex: words[i]})
			i++
		}
	}

	select {
	case <-cancel:
		emit(tts.Event{Type: tts.EventCancelled})
	case <-ticker.C:
		emit(tts.Event{Type: tts.EventEnd})
	}
}

func (e *MockEngine) isPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Voices returns the mock voices.
func (e *MockEngine) Voices(context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{Name: "Mock Voice 1", Lang: "en-US", Local: true},
		{Name: "Mock Voice 2", Lang: "en-GB", Local: false},
		{Name: "Mock Voix", Lang: "fr-FR", Local: true},
	}, nil
}

// IsAvailable returns the mock availability state.
func (e *MockEngine) IsAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.available
}

// Test control methods

// Emit delivers ev through the callback of the latest Speak call. It runs
// in the caller's goroutine.
func (e *MockEngine) Emit(ev tts.Event) {
	e.mu.Lock()
	onEvent := e.onEvent
	e.mu.Unlock()
	if onEvent != nil {
		onEvent(ev)
	}
}

// SetFailure makes Speak fail with err.
func (e *MockEngine) SetFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shouldFail = true
	e.failureError = err
}

// ClearFailure resets the engine to normal operation.
func (e *MockEngine) ClearFailure() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shouldFail = false
	e.failureError = nil
}

// SetAvailable sets what IsAvailable reports.
func (e *MockEngine) SetAvailable(available bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.available = available
}

// Requests returns every accepted speak request.
func (e *MockEngine) Requests() []tts.Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]tts.Utterance(nil), e.requests...)
}

// LastRequest returns the latest accepted speak request.
func (e *MockEngine) LastRequest() (tts.Utterance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		return tts.Utterance{}, false
	}
	return e.requests[len(e.requests)-1], true
}

// GetCallCount returns how often method ("speak", "pause", "resume",
// "stop") was called.
func (e *MockEngine) GetCallCount(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[method]
}
