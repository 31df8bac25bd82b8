package synth

import (
	"context"
	"errors"
	"sync"

	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

// Mock is a Provider for tests and offline preview. It fabricates
// audio whose byte length matches the estimated speaking time of the
// text, so downstream timing math behaves like a real render.
type Mock struct {
	mu sync.Mutex

	// Err, when set, is returned by every Render call.
	Err error
	// FailFirst fails this many Render calls before succeeding, to
	// exercise retry paths.
	FailFirst int
	// FailErr is the error used by FailFirst; Err is used when unset.
	FailErr error

	// Calls records every rendered text in order.
	Calls []string
}

// Model implements Provider.
func (m *Mock) Model() string { return "mock_v1" }

// Render implements Provider.
func (m *Mock) Render(ctx context.Context, text string, voice Voice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, text)

	if m.FailFirst > 0 {
		m.FailFirst--
		if m.FailErr != nil {
			return nil, m.FailErr
		}
		return nil, errors.New("mock render failure")
	}
	if m.Err != nil {
		return nil, m.Err
	}

	n := int(timeline.EstimateDuration(text).Seconds() * BytesPerSecond)
	if n < 1 {
		n = 1
	}
	return make([]byte, n), nil
}
