// Package command speaks through a locally installed speech command such as
// espeak-ng, say or spd-say.
package command

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/sentence"
)

// Engine implements tts.Synthesizer and tts.VoiceLister.
//
// Speech commands do not report progress, so word events are estimated from
// elapsed speaking time at the configured words per minute.
type Engine struct {
	binary string
	wpm    int
	prof   profile
	start  Starter
	output Output
	logger *log.Logger

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	proc    Process
	stopped bool
	paused  bool
	done    chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithStarter replaces process creation.
func WithStarter(s Starter) Option { return func(e *Engine) { e.start = s } }

// WithOutput replaces running the voice listing command.
func WithOutput(o Output) Option { return func(e *Engine) { e.output = o } }

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// New creates an engine for cfg. An empty binary picks the first installed
// entry of Binaries.
func New(cfg tts.CommandConfig, opts ...Option) *Engine {
	binary := cfg.Binary
	if binary == "" {
		binary = Detect()
	}
	e := &Engine{
		binary: binary,
		wpm:    cfg.WordsPerMinute,
		prof:   profileFor(binary),
		start:  startExec,
		output: runOutput,
		logger: log.Default().WithPrefix("command"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect returns the first installed speech command, or "".
func Detect() string {
	for _, b := range Binaries {
		if _, err := exec.LookPath(b); err == nil {
			return b
		}
	}
	return ""
}

// Binary returns the command the engine runs.
func (e *Engine) Binary() string { return e.binary }

// IsAvailable reports whether the command is installed.
func (e *Engine) IsAvailable() bool {
	if e.binary == "" {
		return false
	}
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Speak starts the command for req, killing any command in flight.
func (e *Engine) Speak(req tts.Utterance, onEvent func(tts.Event)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.binary == "" {
		return tts.NewTTSError(tts.ErrEngineNotAvailable, "command", "speak")
	}
	e.stopLocked()

	args, useStdin := e.prof.argv(req, e.wpm)
	stdin := ""
	if useStdin {
		stdin = req.Text
	}
	proc, err := e.start(e.binary, args, stdin)
	if err != nil {
		return tts.NewTTSError(fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err), "command", "start")
	}
	e.logger.Debug("started", "binary", e.binary, "utterance", req.ID)

	u := &utterance{proc: proc, done: make(chan struct{})}
	e.current = u
	go e.wait(req, u, onEvent)
	go e.words(req, u, onEvent)
	return nil
}

func (e *Engine) wait(req tts.Utterance, u *utterance, onEvent func(tts.Event)) {
	emit := func(ev tts.Event) {
		ev.Utterance = req.ID
		onEvent(ev)
	}
	emit(tts.Event{Type: tts.EventStart})

	err := u.proc.Wait()
	close(u.done)

	e.mu.Lock()
	stopped := u.stopped
	if e.current == u {
		e.current = nil
	}
	e.mu.Unlock()

	switch {
	case stopped:
		emit(tts.Event{Type: tts.EventInterrupted})
	case err != nil:
		e.logger.Error("speech command failed", "binary", e.binary, "err", err)
		emit(tts.Event{Type: tts.EventError, Err: tts.NewTTSError(fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err), "command", "speak")})
	default:
		emit(tts.Event{Type: tts.EventEnd})
	}
}

// words estimates word events until the process exits.
func (e *Engine) words(req tts.Utterance, u *utterance, onEvent func(tts.Event)) {
	starts := sentence.WordStarts(req.Text)
	rate := scaledRate(req, e.wpm)
	if len(starts) < 2 || rate <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute / time.Duration(rate))
	defer ticker.Stop()

	for i := 1; i < len(starts); {
		select {
		case <-u.done:
			return
		case <-ticker.C:
			e.mu.Lock()
			paused := u.paused
			e.mu.Unlock()
			if paused {
				continue
			}
			onEvent(tts.Event{Utterance: req.ID, Type: tts.EventWord, CharIndex: starts[i]})
			i++
		}
	}
}

// Pause stops the process with SIGSTOP.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.current
	if u == nil || u.paused {
		return nil
	}
	if err := u.proc.Pause(); err != nil {
		return tts.NewTTSError(err, "command", "pause").WithSeverity(tts.SeverityWarning)
	}
	u.paused = true
	return nil
}

// Resume continues the process with SIGCONT.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.current
	if u == nil || !u.paused {
		return nil
	}
	if err := u.proc.Resume(); err != nil {
		return tts.NewTTSError(err, "command", "resume").WithSeverity(tts.SeverityWarning)
	}
	u.paused = false
	return nil
}

// Stop kills the process in flight without waiting for it to exit.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func (e *Engine) stopLocked() {
	u := e.current
	if u == nil {
		return
	}
	u.stopped = true
	e.current = nil
	if err := u.proc.Kill(); err != nil {
		e.logger.Debug("kill failed", "err", err)
	}
}

// Voices lists the voices the command reports.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	if e.binary == "" {
		return nil, tts.ErrEngineNotAvailable
	}
	out, err := e.output(ctx, e.binary, e.prof.voicesArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s voices: %w", e.binary, err)
	}
	return e.prof.parseVoices(out), nil
}
