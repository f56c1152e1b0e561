package audio

import (
	"sync"
	"time"
)

// MockPlayer is a Player whose position is driven by the caller.
type MockPlayer struct {
	mu       sync.Mutex
	format   Format
	clips    [][]byte
	playing  bool
	paused   bool
	finished bool
	position time.Duration
	duration time.Duration
	playErr  error
}

// NewMockPlayer creates a mock player for the given format.
func NewMockPlayer(format Format) *MockPlayer {
	return &MockPlayer{format: format}
}

func (m *MockPlayer) Play(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}
	m.clips = append(m.clips, pcm)
	m.playing, m.paused, m.finished = true, false, false
	m.position = 0
	m.duration = m.format.Duration(len(pcm))
	return nil
}

func (m *MockPlayer) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing || m.paused {
		return ErrNotPlaying
	}
	m.paused = true
	return nil
}

func (m *MockPlayer) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing || !m.paused {
		return ErrNotPaused
	}
	m.paused = false
	return nil
}

func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing, m.paused, m.finished = false, false, false
	m.position, m.duration = 0, 0
	return nil
}

func (m *MockPlayer) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MockPlayer) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MockPlayer) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

// SetPosition moves the playback position, clamped to the clip.
func (m *MockPlayer) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > m.duration {
		d = m.duration
	}
	if d < 0 {
		d = 0
	}
	m.position = d
}

// Finish marks the current clip as played to its end.
func (m *MockPlayer) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return
	}
	m.position = m.duration
	m.finished = true
}

// InjectError makes the next Play calls fail with err.
func (m *MockPlayer) InjectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// IsPaused reports whether the mock is holding playback.
func (m *MockPlayer) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// IsPlaying reports whether a clip is loaded and not stopped.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Clips returns every clip passed to Play.
func (m *MockPlayer) Clips() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.clips))
	copy(out, m.clips)
	return out
}
