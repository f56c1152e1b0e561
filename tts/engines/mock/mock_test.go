package mock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
)

// recorder collects events delivered on other goroutines.
type recorder struct {
	mu     sync.Mutex
	events []tts.Event
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) handle(ev tts.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	switch ev.Type {
	case tts.EventEnd, tts.EventCancelled:
		close(r.done)
	}
}

func (r *recorder) wait(t *testing.T) []tts.Event {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for utterance to finish")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tts.Event(nil), r.events...)
}

func TestNewMockEngine(t *testing.T) {
	engine := New()
	if !engine.IsAvailable() {
		t.Error("Mock engine should be available by default")
	}
	engine.SetAvailable(false)
	if engine.IsAvailable() {
		t.Error("IsAvailable() = true after SetAvailable(false)")
	}
}

func TestSpeakRecordsRequests(t *testing.T) {
	engine := New()

	req := tts.Utterance{ID: 3, Text: "Hello there.", Lang: "en-US", Rate: 1, Pitch: 1}
	var got []tts.Event
	if err := engine.Speak(req, func(ev tts.Event) { got = append(got, ev) }); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	last, ok := engine.LastRequest()
	if !ok || last != req {
		t.Errorf("LastRequest() = %+v, %v, want %+v", last, ok, req)
	}
	if n := engine.GetCallCount("speak"); n != 1 {
		t.Errorf("GetCallCount(speak) = %d, want 1", n)
	}
	if len(got) != 0 {
		t.Errorf("manual engine emitted %d events on its own", len(got))
	}

	engine.Emit(tts.Event{Utterance: 3, Type: tts.EventWord, CharIndex: 6})
	if len(got) != 1 || got[0].CharIndex != 6 {
		t.Errorf("Emit() delivered %+v", got)
	}
}

func TestSpeakFailure(t *testing.T) {
	engine := New()
	wantErr := errors.New("voice missing")
	engine.SetFailure(wantErr)

	if err := engine.Speak(tts.Utterance{Text: "x"}, func(tts.Event) {}); !errors.Is(err, wantErr) {
		t.Errorf("Speak() error = %v, want %v", err, wantErr)
	}
	if len(engine.Requests()) != 0 {
		t.Error("failed Speak() was recorded as a request")
	}

	engine.ClearFailure()
	if err := engine.Speak(tts.Utterance{Text: "x"}, func(tts.Event) {}); err != nil {
		t.Errorf("Speak() after ClearFailure error = %v", err)
	}
}

func TestAutoPlaysWords(t *testing.T) {
	engine := NewAuto(time.Millisecond)
	rec := newRecorder()

	if err := engine.Speak(tts.Utterance{ID: 1, Text: "one two three"}, rec.handle); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	events := rec.wait(t)

	wantTypes := []tts.EventType{tts.EventStart, tts.EventWord, tts.EventWord, tts.EventWord, tts.EventEnd}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(wantTypes), events)
	}
	wantIndex := []int{0, 0, 4, 8, 0}
	for i, ev := range events {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d type = %v, want %v", i, ev.Type, wantTypes[i])
		}
		if ev.CharIndex != wantIndex[i] {
			t.Errorf("event %d CharIndex = %d, want %d", i, ev.CharIndex, wantIndex[i])
		}
		if ev.Utterance != 1 {
			t.Errorf("event %d Utterance = %d, want 1", i, ev.Utterance)
		}
	}
}

func TestAutoStopCancels(t *testing.T) {
	engine := NewAuto(time.Hour)
	rec := newRecorder()

	if err := engine.Speak(tts.Utterance{ID: 1, Text: "one two"}, rec.handle); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	events := rec.wait(t)
	if last := events[len(events)-1]; last.Type != tts.EventCancelled {
		t.Errorf("last event = %v, want %v", last.Type, tts.EventCancelled)
	}
	if n := engine.GetCallCount("stop"); n != 1 {
		t.Errorf("GetCallCount(stop) = %d, want 1", n)
	}
}

func TestPauseResumeCounts(t *testing.T) {
	engine := New()
	engine.Pause()
	engine.Resume()
	engine.Resume()

	if n := engine.GetCallCount("pause"); n != 1 {
		t.Errorf("GetCallCount(pause) = %d, want 1", n)
	}
	if n := engine.GetCallCount("resume"); n != 2 {
		t.Errorf("GetCallCount(resume) = %d, want 2", n)
	}
}

func TestVoices(t *testing.T) {
	voices, err := New().Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	english := tts.EnglishVoices(voices)
	if len(english) != 2 {
		t.Fatalf("EnglishVoices() = %d voices, want 2", len(english))
	}
	if !english[0].Local {
		t.Errorf("first voice %q should be local", english[0].Name)
	}
}
