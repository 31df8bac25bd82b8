package synth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestElevenLabsRender(t *testing.T) {
	wantAudio := []byte("fake mp3 frames")
	var gotPath, gotKey, gotFormat string
	var gotBody renderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotFormat = r.URL.Query().Get("output_format")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write(wantAudio)
	}))
	defer srv.Close()

	e := NewElevenLabs("secret-key", WithBaseURL(srv.URL))
	voice := Voice{ID: "voice-123", Settings: DefaultSettings()}
	audio, err := e.Render(context.Background(), "namaste doston", voice)
	if err != nil {
		t.Fatal(err)
	}

	if string(audio) != string(wantAudio) {
		t.Errorf("audio = %q", audio)
	}
	if gotPath != "/v1/text-to-speech/voice-123" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotFormat != EncodingMP3 {
		t.Errorf("output_format = %q", gotFormat)
	}
	if gotBody.Text != "namaste doston" {
		t.Errorf("request text = %q", gotBody.Text)
	}
	if gotBody.ModelID != e.Model() {
		t.Errorf("model_id = %q", gotBody.ModelID)
	}
	if gotBody.VoiceSettings.Stability != 0.3 || !gotBody.VoiceSettings.SpeakerBoost {
		t.Errorf("voice settings = %+v", gotBody.VoiceSettings)
	}
}

func TestElevenLabsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewElevenLabs("k", WithBaseURL(srv.URL))
	_, err := e.Render(context.Background(), "text", Voice{ID: "v"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.Status)
	}
	if !apiErr.Retryable() {
		t.Error("429 should be retryable")
	}
	if !strings.Contains(apiErr.Detail, "quota") {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{400, false},
		{401, false},
		{422, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		e := &APIError{Status: tt.status}
		if got := e.Retryable(); got != tt.retryable {
			t.Errorf("Retryable(%d) = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}

func TestElevenLabsEmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewElevenLabs("k", WithBaseURL(srv.URL))
	if _, err := e.Render(context.Background(), "text", Voice{ID: "v"}); err == nil {
		t.Fatal("expected error on empty body")
	}
}
