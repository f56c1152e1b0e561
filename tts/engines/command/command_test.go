package command

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/readaloud/tts"
)

type fakeProcess struct {
	mu     sync.Mutex
	exit   chan error
	killed bool
	paused bool
}

func newFakeProcess() *fakeProcess { return &fakeProcess{exit: make(chan error, 1)} }

func (p *fakeProcess) Wait() error { return <-p.exit }

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.exit <- errors.New("signal: killed")
	return nil
}

func (p *fakeProcess) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

func (p *fakeProcess) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}

type launch struct {
	binary string
	args   []string
	stdin  string
}

type fakeStarter struct {
	mu       sync.Mutex
	procs    []*fakeProcess
	launches []launch
	err      error
}

func (s *fakeStarter) start(binary string, args []string, stdin string) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p := newFakeProcess()
	s.procs = append(s.procs, p)
	s.launches = append(s.launches, launch{binary, args, stdin})
	return p, nil
}

func waitFor(t *testing.T, events <-chan tts.Event, want tts.EventType) tts.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", want)
			return tts.Event{}
		}
	}
}

func newTestEngine(binary string) (*Engine, *fakeStarter) {
	s := &fakeStarter{}
	e := New(tts.CommandConfig{Binary: binary, WordsPerMinute: 6000}, WithStarter(s.start))
	return e, s
}

func TestSpeakEndsOnCleanExit(t *testing.T) {
	e, s := newTestEngine("espeak-ng")
	events := make(chan tts.Event, 64)

	req := tts.Utterance{ID: 3, Text: "one two three", Rate: 1, Pitch: 1, Lang: "en-US"}
	if err := e.Speak(req, func(ev tts.Event) { events <- ev }); err != nil {
		t.Fatalf("Speak() = %v", err)
	}
	if ev := waitFor(t, events, tts.EventStart); ev.Utterance != 3 {
		t.Errorf("start utterance = %d, want 3", ev.Utterance)
	}
	if ev := waitFor(t, events, tts.EventWord); ev.CharIndex != 4 {
		t.Errorf("first word event CharIndex = %d, want 4", ev.CharIndex)
	}
	s.procs[0].exit <- nil
	waitFor(t, events, tts.EventEnd)

	if got := s.launches[0].stdin; got != "one two three" {
		t.Errorf("stdin = %q, want %q", got, "one two three")
	}
}

func TestStopInterrupts(t *testing.T) {
	e, s := newTestEngine("say")
	events := make(chan tts.Event, 64)

	_ = e.Speak(tts.Utterance{ID: 1, Text: "hello", Rate: 1}, func(ev tts.Event) { events <- ev })
	_ = e.Stop()
	waitFor(t, events, tts.EventInterrupted)
	if !s.procs[0].killed {
		t.Error("Stop() did not kill the process")
	}
}

func TestSpeakPreemptsCurrent(t *testing.T) {
	e, s := newTestEngine("espeak-ng")
	first := make(chan tts.Event, 64)
	second := make(chan tts.Event, 64)

	_ = e.Speak(tts.Utterance{ID: 1, Text: "first", Rate: 1}, func(ev tts.Event) { first <- ev })
	_ = e.Speak(tts.Utterance{ID: 2, Text: "second", Rate: 1}, func(ev tts.Event) { second <- ev })

	waitFor(t, first, tts.EventInterrupted)
	if !s.procs[0].killed {
		t.Error("first process still running")
	}
	s.procs[1].exit <- nil
	waitFor(t, second, tts.EventEnd)
}

func TestNonZeroExitIsError(t *testing.T) {
	e, s := newTestEngine("espeak-ng")
	events := make(chan tts.Event, 64)

	_ = e.Speak(tts.Utterance{ID: 1, Text: "hello", Rate: 1}, func(ev tts.Event) { events <- ev })
	s.procs[0].exit <- errors.New("exit status 1")
	ev := waitFor(t, events, tts.EventError)
	if !errors.Is(ev.Err, tts.ErrSynthesisFailed) {
		t.Errorf("error event err = %v, want %v", ev.Err, tts.ErrSynthesisFailed)
	}
}

func TestStartFailure(t *testing.T) {
	e, s := newTestEngine("espeak-ng")
	s.err = errors.New("exec: not found")
	if err := e.Speak(tts.Utterance{Text: "hello"}, func(tts.Event) {}); !errors.Is(err, tts.ErrSynthesisFailed) {
		t.Errorf("Speak() = %v, want %v", err, tts.ErrSynthesisFailed)
	}
}

func TestPauseResumeSignals(t *testing.T) {
	e, s := newTestEngine("espeak-ng")
	_ = e.Speak(tts.Utterance{ID: 1, Text: "hello there", Rate: 1}, func(tts.Event) {})

	if err := e.Pause(); err != nil {
		t.Fatalf("Pause() = %v", err)
	}
	if !s.procs[0].paused {
		t.Error("Pause() did not stop the process")
	}
	if err := e.Resume(); err != nil {
		t.Fatalf("Resume() = %v", err)
	}
	if s.procs[0].paused {
		t.Error("Resume() did not continue the process")
	}
}

func TestPauseWithoutUtterance(t *testing.T) {
	e, _ := newTestEngine("espeak-ng")
	if err := e.Pause(); err != nil {
		t.Errorf("Pause() = %v, want nil", err)
	}
	if err := e.Resume(); err != nil {
		t.Errorf("Resume() = %v, want nil", err)
	}
}

func TestArgv(t *testing.T) {
	tests := []struct {
		binary    string
		req       tts.Utterance
		want      []string
		wantStdin bool
	}{
		{
			binary:    "espeak-ng",
			req:       tts.Utterance{Text: "hi", Rate: 1.5, Pitch: 1, Lang: "en-US"},
			want:      []string{"--stdin", "-s", "263", "-p", "50", "-v", "en-us"},
			wantStdin: true,
		},
		{
			binary:    "/usr/bin/say",
			req:       tts.Utterance{Text: "hi", Rate: 1, Voice: "Samantha"},
			want:      []string{"-r", "175", "-v", "Samantha", "-f", "-"},
			wantStdin: true,
		},
		{
			binary: "spd-say",
			req:    tts.Utterance{Text: "-5 degrees", Rate: 2, Pitch: 1.2, Lang: "en-US"},
			want:   []string{"-w", "-r", "50", "-p", "20", "-l", "en-US", " -5 degrees"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.binary, func(t *testing.T) {
			args, stdin := profileFor(tt.binary).argv(tt.req, 175)
			if !reflect.DeepEqual(args, tt.want) {
				t.Errorf("argv() = %q, want %q", args, tt.want)
			}
			if stdin != tt.wantStdin {
				t.Errorf("argv() stdin = %v, want %v", stdin, tt.wantStdin)
			}
		})
	}
}

func TestVoices(t *testing.T) {
	tests := []struct {
		binary string
		out    string
		want   []tts.Voice
	}{
		{
			binary: "espeak-ng",
			out: `Pty Language       Age/Gender VoiceName          File                 Other Languages
 2  en-gb           --/M      English_(Great_Britain) gmw/en               (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
`,
			want: []tts.Voice{
				{Name: "English_(Great_Britain)", Lang: "en-gb", Local: true},
				{Name: "English_(America)", Lang: "en-us", Local: true},
			},
		},
		{
			binary: "say",
			out: `Alex                en_US    # Most people recognize me by my voice.
Bad News            en_US    # The light you see at the end of the tunnel is the headlamp of a fast approaching train.
Amelie              fr_CA    # Bonjour, je m'appelle Amelie.
`,
			want: []tts.Voice{
				{Name: "Alex", Lang: "en-US", Local: true},
				{Name: "Bad News", Lang: "en-US", Local: true},
				{Name: "Amelie", Lang: "fr-CA", Local: true},
			},
		},
		{
			binary: "spd-say",
			out: `NAME                 LANGUAGE             VARIANT
english-us           en-US                none
`,
			want: []tts.Voice{{Name: "english-us", Lang: "en-US", Local: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.binary, func(t *testing.T) {
			out := func(ctx context.Context, binary string, args ...string) ([]byte, error) {
				return []byte(tt.out), nil
			}
			e := New(tts.CommandConfig{Binary: tt.binary, WordsPerMinute: 175}, WithOutput(out))
			got, err := e.Voices(context.Background())
			if err != nil {
				t.Fatalf("Voices() = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Voices() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"say":                "say",
		"/usr/bin/espeak-ng": "espeak-ng",
		`C:\bin\espeak.exe`:  "espeak",
	}
	for in, want := range tests {
		if got := baseName(in); got != want {
			t.Errorf("baseName(%q) = %q, want %q", in, got, want)
		}
	}
}

var (
	_ tts.Synthesizer = (*Engine)(nil)
	_ tts.VoiceLister = (*Engine)(nil)
)
