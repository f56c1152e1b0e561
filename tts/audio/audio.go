// Package audio plays synthesized 16-bit PCM.
package audio

import (
	"errors"
	"time"
)

// Errors returned by players.
var (
	ErrEmptyAudio = errors.New("audio data is empty")
	ErrNotPlaying = errors.New("no audio is playing")
	ErrNotPaused  = errors.New("audio is not paused")
	ErrClosed     = errors.New("player is closed")
)

// Format describes signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// BytesPerSecond returns the data rate of the format.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

// Duration returns how long n bytes of PCM play for.
func (f Format) Duration(n int) time.Duration {
	bps := f.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(bps)
}

// Player plays one clip at a time. Play replaces any current clip.
type Player interface {
	Play(pcm []byte) error
	Pause() error
	Resume() error
	Stop() error

	// Position is how far into the current clip playback is.
	Position() time.Duration
	// Duration is the length of the current clip.
	Duration() time.Duration
	// Finished reports whether the current clip played to its end.
	Finished() bool
}
