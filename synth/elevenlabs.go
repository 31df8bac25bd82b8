package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// ElevenLabs renders lines through the ElevenLabs text-to-speech API.
// Requests are rate limited so a long script doesn't trip the
// provider's concurrency caps.
type ElevenLabs struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// ElevenLabsOption configures the client.
type ElevenLabsOption func(*ElevenLabs)

// WithBaseURL points the client at a different API host. Used by tests
// and proxies.
func WithBaseURL(u string) ElevenLabsOption {
	return func(e *ElevenLabs) { e.baseURL = u }
}

// WithModel selects the synthesis model.
func WithModel(m string) ElevenLabsOption {
	return func(e *ElevenLabs) { e.model = m }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(c *http.Client) ElevenLabsOption {
	return func(e *ElevenLabs) { e.client = c }
}

// NewElevenLabs builds a client. The zero configuration talks to the
// public API with the multilingual model at two requests per second.
func NewElevenLabs(apiKey string, opts ...ElevenLabsOption) *ElevenLabs {
	e := &ElevenLabs{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   "eleven_multilingual_v2",
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model implements Provider.
func (e *ElevenLabs) Model() string { return e.model }

type renderRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Render implements Provider.
func (e *ElevenLabs) Render(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(renderRequest{
		Text:          text,
		ModelID:       e.model,
		VoiceSettings: voice.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encode render request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		e.baseURL, url.PathEscape(voice.ID), EncodingMP3)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &APIError{Status: resp.StatusCode, Detail: string(detail)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("provider returned empty audio")
	}
	return audio, nil
}

// APIError is a non-200 provider response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Detail)
}

// Retryable reports whether the request is worth repeating: rate
// limits and server errors are, bad requests and auth failures are
// not.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
