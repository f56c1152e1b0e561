// Package engines picks a speech backend.
package engines

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/tts/engines/command"
	"github.com/dgnsrekt/readaloud/tts/engines/mock"
	"github.com/dgnsrekt/readaloud/tts/engines/piper"
)

// Engine is a synthesizer that can tell whether it is usable here.
type Engine interface {
	tts.Synthesizer
	IsAvailable() bool
}

// Options carries collaborators for the backends.
type Options struct {
	Cache  piper.Cache // nil disables clip caching
	Logger *log.Logger
}

// Selected is the backend New settled on.
type Selected struct {
	Name   string
	Engine Engine
}

// fallbacks lists what to try, in order, for each engine name.
var fallbacks = map[string][]string{
	tts.EngineAuto:    {tts.EnginePiper, tts.EngineCommand, tts.EngineMock},
	tts.EnginePiper:   {tts.EnginePiper, tts.EngineCommand, tts.EngineMock},
	tts.EngineCommand: {tts.EngineCommand, tts.EngineMock},
	tts.EngineMock:    {tts.EngineMock},
}

// New builds the engine named by cfg.Engine, falling back along piper,
// command, mock when it is not installed.
func New(cfg tts.Config, opts Options) (Selected, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	chain, ok := fallbacks[cfg.Engine]
	if !ok {
		return Selected{}, fmt.Errorf("%w: %q", tts.ErrUnknownEngine, cfg.Engine)
	}

	for _, name := range chain {
		e := build(name, cfg, opts, logger)
		if e.IsAvailable() {
			if name != chain[0] || cfg.Engine == tts.EngineAuto {
				logger.Info("selected speech engine", "requested", cfg.Engine, "engine", name)
			}
			return Selected{Name: name, Engine: e}, nil
		}
		logger.Warn("speech engine not available", "engine", name)
	}
	return Selected{}, tts.ErrEngineNotAvailable
}

func build(name string, cfg tts.Config, opts Options, logger *log.Logger) Engine {
	switch name {
	case tts.EnginePiper:
		popts := []piper.Option{piper.WithLogger(logger.WithPrefix("piper"))}
		if opts.Cache != nil {
			popts = append(popts, piper.WithCache(opts.Cache))
		}
		return piper.New(cfg.Piper, popts...)
	case tts.EngineCommand:
		return command.New(cfg.Command, command.WithLogger(logger.WithPrefix("command")))
	default:
		return mock.NewAuto(cfg.Mock.WordDelay)
	}
}
