// Package synth turns a normalized script into audio, one line at a
// time, against a remote voice provider.
package synth

import (
	"context"

	"github.com/Hazenbox/Vani-ai-sub001/script"
)

// EncodingMP3 is the output format every render uses: 44.1 kHz MP3 at
// 128 kbps.
const EncodingMP3 = "mp3_44100_128"

// BytesPerSecond is the byte rate of EncodingMP3 output; rendered byte
// counts divide by this to get playing time.
const BytesPerSecond = 16000

// VoiceSettings shapes the delivery of a voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	SpeakerBoost    bool    `json:"use_speaker_boost"`
}

// DefaultSettings is the house style: expressive but consistent.
func DefaultSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.3,
		SimilarityBoost: 0.7,
		Style:           0.5,
		SpeakerBoost:    true,
	}
}

// Voice binds a speaker to a provider voice.
type Voice struct {
	ID       string
	Name     string
	Settings VoiceSettings
}

// DefaultVoices maps both speakers to their stock voices.
func DefaultVoices() map[script.Speaker]Voice {
	return map[script.Speaker]Voice{
		script.SpeakerA: {ID: "pNInz6obpgDQGcFmaJgB", Name: "Rahul", Settings: DefaultSettings()},
		script.SpeakerB: {ID: "EXAVITQu4vr4xnSDxMaL", Name: "Anjali", Settings: DefaultSettings()},
	}
}

// Provider renders one line of text as audio. Implementations must be
// safe for sequential reuse; the session never calls Render
// concurrently.
type Provider interface {
	// Render synthesizes text with the given voice and returns encoded
	// audio in EncodingMP3.
	Render(ctx context.Context, text string, voice Voice) ([]byte, error)

	// Model identifies the synthesis model, for cache keying.
	Model() string
}
