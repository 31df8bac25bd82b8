package audio

import (
	"errors"
	"sync"
	"time"
)

// MockPlayer simulates playback on a wall clock without touching the
// audio device. The UI and its tests run against it on machines with
// no sound hardware.
type MockPlayer struct {
	mu      sync.Mutex
	pcm     []byte
	base    time.Duration
	started time.Time
	playing bool
	closed  bool

	// Ops records the calls made, for assertions.
	Ops []string
}

func (m *MockPlayer) record(op string) { m.Ops = append(m.Ops, op) }

// Play implements Player.
func (m *MockPlayer) Play(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("audio: player closed")
	}
	if len(pcm) == 0 {
		return errors.New("audio: empty pcm")
	}
	m.record("play")
	m.pcm = pcm
	m.base = 0
	m.started = time.Now()
	m.playing = true
	return nil
}

// Pause implements Player.
func (m *MockPlayer) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return nil
	}
	m.record("pause")
	m.base = m.positionLocked()
	m.playing = false
	return nil
}

// Resume implements Player.
func (m *MockPlayer) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing || m.pcm == nil {
		return nil
	}
	m.record("resume")
	m.started = time.Now()
	m.playing = true
	return nil
}

// Stop implements Player.
func (m *MockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop")
	m.base = 0
	m.playing = false
	return nil
}

// SeekTo implements Player.
func (m *MockPlayer) SeekTo(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pcm == nil {
		return ErrNothingLoaded
	}
	m.record("seek")
	if t < 0 {
		t = 0
	}
	if max := PCMDuration(len(m.pcm)); t > max {
		t = max
	}
	m.base = t
	m.started = time.Now()
	m.playing = true
	return nil
}

// Position implements Player.
func (m *MockPlayer) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positionLocked()
}

func (m *MockPlayer) positionLocked() time.Duration {
	pos := m.base
	if m.playing {
		pos += time.Since(m.started)
	}
	if max := PCMDuration(len(m.pcm)); pos > max {
		pos = max
	}
	return pos
}

// Playing implements Player.
func (m *MockPlayer) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Close implements Player.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("close")
	m.playing = false
	m.closed = true
	return nil
}
