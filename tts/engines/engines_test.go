package engines

import (
	"errors"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readaloud/tts"
)

func missingConfig(engine string) tts.Config {
	cfg := tts.DefaultConfig()
	cfg.Engine = engine
	cfg.Piper.Binary = "readaloud-test-missing-piper"
	cfg.Command.Binary = "readaloud-test-missing-speaker"
	return cfg
}

func TestNewFallsBack(t *testing.T) {
	tests := []struct {
		engine string
		want   string
	}{
		{tts.EngineAuto, tts.EngineMock},
		{tts.EnginePiper, tts.EngineMock},
		{tts.EngineCommand, tts.EngineMock},
		{tts.EngineMock, tts.EngineMock},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			sel, err := New(missingConfig(tt.engine), Options{})
			if err != nil {
				t.Fatalf("New() = %v", err)
			}
			if sel.Name != tt.want {
				t.Errorf("New() engine = %q, want %q", sel.Name, tt.want)
			}
		})
	}
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New(missingConfig("festival"), Options{})
	if !errors.Is(err, tts.ErrUnknownEngine) {
		t.Errorf("New() = %v, want %v", err, tts.ErrUnknownEngine)
	}
}

func TestBuildTypes(t *testing.T) {
	cfg := missingConfig(tts.EngineAuto)
	for _, name := range []string{tts.EnginePiper, tts.EngineCommand, tts.EngineMock} {
		if e := build(name, cfg, Options{}, log.Default()); e == nil {
			t.Errorf("build(%q) = nil", name)
		}
	}
}
