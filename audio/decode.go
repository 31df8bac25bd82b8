// Package audio plays rendered episodes and tracks the playback clock
// so the UI can follow along line by line.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// PCM output parameters. Mono 16-bit at 44.1 kHz keeps the byte-to-
// time conversion trivial.
const (
	SampleRate = 44100
	Channels   = 1
)

// PCMBytesPerSecond converts between PCM byte offsets and time.
const PCMBytesPerSecond = SampleRate * Channels * 2

// DecodeMP3 converts MP3 audio to raw signed 16-bit little-endian PCM
// via ffmpeg. The context bounds the conversion; a stuck ffmpeg is
// killed with it.
func DecodeMP3(ctx context.Context, mp3 []byte) ([]byte, error) {
	if len(mp3) == 0 {
		return nil, fmt.Errorf("decode: empty input")
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-f", "mp3", "-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(mp3)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(errBuf.String())
		if detail != "" {
			return nil, fmt.Errorf("ffmpeg: %s: %w", detail, err)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	return out.Bytes(), nil
}

// FFmpegAvailable reports whether ffmpeg is on PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// PCMDuration converts a PCM byte count to playing time.
func PCMDuration(n int) time.Duration {
	return time.Duration(float64(n) / PCMBytesPerSecond * float64(time.Second))
}

// PCMOffset converts a playback position to a byte offset into PCM
// data, aligned to a whole sample.
func PCMOffset(t time.Duration) int {
	n := int(t.Seconds() * PCMBytesPerSecond)
	return n - n%2
}
