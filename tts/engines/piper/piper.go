// Package piper speaks through the piper neural TTS binary. Each utterance
// is synthesized to raw PCM by a fresh piper process and played on the
// audio device.
package piper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/audio"
	"github.com/dgnsrekt/readaloud/tts/sentence"
)

// Runner runs piper and returns its stdout.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, stdin string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, binary string, args []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdin = strings.NewReader(stdin + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Cache stores synthesized clips.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option { return func(e *Engine) { e.runner = r } }

// WithPlayer replaces the audio device.
func WithPlayer(p audio.Player) Option { return func(e *Engine) { e.player = p } }

// WithCache enables clip caching.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// Engine implements tts.Synthesizer and tts.VoiceLister.
type Engine struct {
	cfg     tts.PiperConfig
	runner  Runner
	player  audio.Player
	cache   Cache
	limiter *rate.Limiter
	logger  *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	paused bool
}

// New creates a piper engine. The audio device is opened on first use.
func New(cfg tts.PiperConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		runner:  execRunner{},
		limiter: rate.NewLimiter(rate.Limit(cfg.LaunchesPerSec), 1),
		logger:  log.Default().WithPrefix("piper"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsAvailable reports whether the binary and default model can be found.
func (e *Engine) IsAvailable() bool {
	if _, err := exec.LookPath(e.cfg.Binary); err != nil {
		e.logger.Debug("binary not found", "binary", e.cfg.Binary)
		return false
	}
	if _, err := os.Stat(e.modelPath("")); err != nil {
		e.logger.Debug("model not found", "model", e.modelPath(""))
		return false
	}
	return true
}

// modelPath resolves a voice name to a model file. An empty voice selects
// the configured model.
func (e *Engine) modelPath(voice string) string {
	name := voice
	if name == "" {
		name = e.cfg.Model
	}
	if strings.HasSuffix(name, ".onnx") || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(e.cfg.ModelDir, name+".onnx")
}

// args builds the piper command line for one utterance.
func (e *Engine) args(req tts.Utterance) []string {
	r := req.Rate
	if r <= 0 {
		r = 1
	}
	return []string{
		"--model", e.modelPath(req.Voice),
		"--output-raw",
		"--length-scale", strconv.FormatFloat(1/r, 'f', 3, 64),
		"--speaker", strconv.Itoa(e.cfg.SpeakerID),
		"--noise-scale", strconv.FormatFloat(e.cfg.NoiseScale, 'f', 3, 64),
		"--noise-w", strconv.FormatFloat(e.cfg.NoiseW, 'f', 3, 64),
	}
}

// Speak synthesizes req in the background and plays it.
func (e *Engine) Speak(req tts.Utterance, onEvent func(tts.Event)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		p, err := audio.NewOtoPlayer(audio.Format{SampleRate: e.cfg.SampleRate, Channels: 1}, e.cfg.Volume)
		if err != nil {
			return tts.NewTTSError(fmt.Errorf("%w: %v", tts.ErrEngineNotAvailable, err), "piper", "open audio")
		}
		e.player = p
	}

	e.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.run(ctx, req, onEvent)
	return nil
}

// Pause holds playback. A pause during synthesis takes effect when
// playback starts.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused || e.player == nil {
		return nil
	}
	e.paused = true
	if err := e.player.Pause(); err != nil && !errors.Is(err, audio.ErrNotPlaying) {
		return err
	}
	return nil
}

// Resume continues playback.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused || e.player == nil {
		return nil
	}
	e.paused = false
	if err := e.player.Resume(); err != nil && !errors.Is(err, audio.ErrNotPaused) {
		return err
	}
	return nil
}

// Stop cancels synthesis and playback without waiting.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.paused = false
	if e.player != nil {
		_ = e.player.Stop()
	}
}

func (e *Engine) run(ctx context.Context, req tts.Utterance, onEvent func(tts.Event)) {
	emit := func(ev tts.Event) {
		ev.Utterance = req.ID
		onEvent(ev)
	}

	pcm, err := e.synthesize(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			emit(tts.Event{Type: tts.EventCancelled})
			return
		}
		e.logger.Error("synthesis failed", "utterance", req.ID, "err", err)
		emit(tts.Event{Type: tts.EventError, Err: err})
		return
	}

	e.mu.Lock()
	if ctx.Err() != nil {
		e.mu.Unlock()
		emit(tts.Event{Type: tts.EventCancelled})
		return
	}
	if err := e.player.Play(pcm); err != nil {
		e.mu.Unlock()
		emit(tts.Event{Type: tts.EventError, Err: tts.NewTTSError(err, "piper", "play")})
		return
	}
	if e.paused {
		_ = e.player.Pause()
	}
	e.mu.Unlock()

	emit(tts.Event{Type: tts.EventStart})
	e.track(ctx, req.Text, emit)
}

// track turns playback progress into word events until the clip ends.
func (e *Engine) track(ctx context.Context, text string, emit func(tts.Event)) {
	words := sentence.WordStarts(text)
	last := -1
	ticker := time.NewTicker(e.cfg.WordUpdateEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			emit(tts.Event{Type: tts.EventCancelled})
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		if ctx.Err() != nil {
			e.mu.Unlock()
			continue
		}
		pos, dur, done := e.player.Position(), e.player.Duration(), e.player.Finished()
		e.mu.Unlock()

		if done {
			emit(tts.Event{Type: tts.EventEnd})
			return
		}
		if dur <= 0 || len(words) == 0 {
			continue
		}
		if w := sentence.WordAt(text, words, float64(pos)/float64(dur)); w > last {
			last = w
			emit(tts.Event{Type: tts.EventWord, CharIndex: w})
		}
	}
}

// synthesize returns PCM for req from the cache or a new piper process.
func (e *Engine) synthesize(ctx context.Context, req tts.Utterance) ([]byte, error) {
	key := cache.Key(req.Text, e.modelPath(req.Voice), req.Rate)
	if e.cache != nil {
		if pcm, ok := e.cache.Get(key); ok {
			e.logger.Debug("cache hit", "utterance", req.ID, "bytes", len(pcm))
			return pcm, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	pcm, err := e.runner.Run(runCtx, e.cfg.Binary, e.args(req), req.Text)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %v", tts.ErrTimeout, e.cfg.Timeout)
		}
		return nil, tts.NewTTSError(fmt.Errorf("%w: %v", tts.ErrSynthesisFailed, err), "piper", "synthesize")
	}
	if len(pcm) == 0 {
		return nil, tts.NewTTSError(fmt.Errorf("%w: no audio generated", tts.ErrSynthesisFailed), "piper", "synthesize")
	}
	e.logger.Debug("synthesized", "utterance", req.ID, "bytes", len(pcm), "took", time.Since(start))

	if e.cache != nil {
		if err := e.cache.Put(key, pcm); err != nil {
			e.logger.Warn("failed to cache clip", "err", err)
		}
	}
	return pcm, nil
}

// Voices lists the models installed in the model directory.
func (e *Engine) Voices(ctx context.Context) ([]tts.Voice, error) {
	dir := e.cfg.ModelDir
	if dir == "" {
		dir = filepath.Dir(e.modelPath(""))
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.onnx"))
	if err != nil {
		return nil, err
	}
	voices := make([]tts.Voice, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".onnx")
		voices = append(voices, tts.Voice{Name: name, Lang: modelLang(name), Local: true})
	}
	return voices, nil
}

// modelLang maps "en_US-lessac-medium" to "en-US".
func modelLang(name string) string {
	lang, _, _ := strings.Cut(name, "-")
	return strings.ReplaceAll(lang, "_", "-")
}
