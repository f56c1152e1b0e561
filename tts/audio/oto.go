package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var (
	contextOnce   sync.Once
	sharedContext *oto.Context
	sharedFormat  Format
	contextErr    error
)

func otoContext(format Format) (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		<-ready
		sharedContext, sharedFormat = ctx, format
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if sharedFormat != format {
		return nil, fmt.Errorf("audio context already open at %d Hz/%d ch, cannot switch to %d Hz/%d ch",
			sharedFormat.SampleRate, sharedFormat.Channels, format.SampleRate, format.Channels)
	}
	return sharedContext, nil
}

// OtoPlayer plays PCM on the system audio device.
type OtoPlayer struct {
	mu     sync.Mutex
	ctx    *oto.Context
	format Format
	volume float64

	player *oto.Player
	data   []byte // Kept alive while the oto player reads from it

	duration   time.Duration
	startTime  time.Time
	pausedAt   time.Duration
	totalPause time.Duration
	paused     bool
	closed     bool
}

// NewOtoPlayer opens the audio device for the given format.
func NewOtoPlayer(format Format, volume float64) (*OtoPlayer, error) {
	if format.Channels != 1 && format.Channels != 2 {
		return nil, fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", format.Channels)
	}
	ctx, err := otoContext(format)
	if err != nil {
		return nil, err
	}
	return &OtoPlayer{ctx: ctx, format: format, volume: volume}, nil
}

// Play starts playing pcm, replacing the current clip.
func (p *OtoPlayer) Play(pcm []byte) error {
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.stopLocked()

	p.data = pcm
	p.player = p.ctx.NewPlayer(bytes.NewReader(p.data))
	p.player.SetVolume(p.volume)
	p.duration = p.format.Duration(len(pcm))
	p.startTime = time.Now()
	p.pausedAt, p.totalPause, p.paused = 0, 0, false
	p.player.Play()
	return nil
}

// Pause holds playback.
func (p *OtoPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil || p.paused {
		return ErrNotPlaying
	}
	p.pausedAt = p.positionLocked()
	p.paused = true
	p.player.Pause()
	return nil
}

// Resume continues held playback.
func (p *OtoPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil || !p.paused {
		return ErrNotPaused
	}
	p.totalPause += time.Since(p.startTime.Add(p.pausedAt + p.totalPause))
	p.paused = false
	p.player.Play()
	return nil
}

// Stop ends playback and releases the clip.
func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *OtoPlayer) stopLocked() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	_ = p.player.Close() // Closing a drained player is harmless
	p.player, p.data = nil, nil
	p.duration, p.pausedAt, p.totalPause, p.paused = 0, 0, 0, false
}

// Position returns the playback position in the current clip.
func (p *OtoPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *OtoPlayer) positionLocked() time.Duration {
	if p.player == nil {
		return 0
	}
	if p.paused {
		return p.pausedAt
	}
	pos := time.Since(p.startTime) - p.totalPause
	if pos > p.duration {
		pos = p.duration
	}
	return pos
}

// Duration returns the length of the current clip.
func (p *OtoPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Finished reports whether the device has drained the current clip.
func (p *OtoPlayer) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil || p.paused {
		return false
	}
	return !p.player.IsPlaying() && p.positionLocked() >= p.duration
}

// Close stops playback. The shared device stays open for the process.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	return nil
}
