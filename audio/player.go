package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player is the playback surface the UI drives. Position reports the
// playback clock, which the timeline cursor maps to a dialogue line.
type Player interface {
	// Play starts (or restarts) playback of PCM data from the top.
	Play(pcm []byte) error
	// Pause halts playback, keeping position.
	Pause() error
	// Resume continues after a pause.
	Resume() error
	// Stop halts playback and resets position to zero.
	Stop() error
	// SeekTo restarts playback of the loaded audio at position t.
	SeekTo(t time.Duration) error
	// Position is the current playback clock.
	Position() time.Duration
	// Playing reports whether audio is currently running.
	Playing() bool
	// Close releases the audio device.
	Close() error
}

// ErrNothingLoaded is returned by SeekTo before any Play call.
var ErrNothingLoaded = errors.New("audio: nothing loaded")

// OtoPlayer plays PCM through the system audio device. The loaded
// audio is retained so seeks can restart from any byte offset without
// another decode.
type OtoPlayer struct {
	ctx *oto.Context

	mu      sync.Mutex
	player  *oto.Player
	pcm     []byte
	base    time.Duration // clock position where the current oto player started
	started time.Time
	pausedA time.Duration // accumulated pause time for the current segment
	pausedT time.Time     // when the current pause began, zero if not paused
	playing bool
	closed  bool
}

// NewOtoPlayer opens the system audio device.
func NewOtoPlayer() (*OtoPlayer, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &OtoPlayer{ctx: ctx}, nil
}

// Play implements Player.
func (p *OtoPlayer) Play(pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio: empty pcm")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("audio: player closed")
	}
	p.pcm = pcm
	return p.startAt(0)
}

// SeekTo implements Player. Seeking restarts the device player at the
// matching byte offset; oto players cannot rewind, so a fresh player
// over the remaining bytes is the reliable way.
func (p *OtoPlayer) SeekTo(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("audio: player closed")
	}
	if p.pcm == nil {
		return ErrNothingLoaded
	}
	if t < 0 {
		t = 0
	}
	if max := PCMDuration(len(p.pcm)); t > max {
		t = max
	}
	return p.startAt(t)
}

// startAt replaces the device player with one reading from offset t.
// Caller holds p.mu.
func (p *OtoPlayer) startAt(t time.Duration) error {
	p.dropPlayer()

	off := PCMOffset(t)
	if off > len(p.pcm) {
		off = len(p.pcm)
	}
	pl := p.ctx.NewPlayer(bytes.NewReader(p.pcm[off:]))
	pl.Play()

	p.player = pl
	p.base = t
	p.started = time.Now()
	p.pausedA = 0
	p.pausedT = time.Time{}
	p.playing = true
	return nil
}

// Pause implements Player.
func (p *OtoPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil || !p.playing {
		return nil
	}
	p.player.Pause()
	p.playing = false
	p.pausedT = time.Now()
	return nil
}

// Resume implements Player.
func (p *OtoPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil || p.playing {
		return nil
	}
	p.pausedA += time.Since(p.pausedT)
	p.pausedT = time.Time{}
	p.player.Play()
	p.playing = true
	return nil
}

// Stop implements Player.
func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropPlayer()
	return nil
}

// dropPlayer closes the device player. Caller holds p.mu.
func (p *OtoPlayer) dropPlayer() {
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
	p.playing = false
	p.base = 0
	p.pausedA = 0
	p.pausedT = time.Time{}
}

// Position implements Player.
func (p *OtoPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return 0
	}
	elapsed := time.Since(p.started) - p.pausedA
	if !p.pausedT.IsZero() {
		elapsed -= time.Since(p.pausedT)
	}
	pos := p.base + elapsed
	if max := PCMDuration(len(p.pcm)); pos > max {
		pos = max
	}
	return pos
}

// Playing implements Player.
func (p *OtoPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.player != nil && p.player.IsPlaying()
}

// Close implements Player.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropPlayer()
	p.pcm = nil
	p.closed = true
	// oto contexts have no Close in v3; suspend quiets the device.
	return p.ctx.Suspend()
}
