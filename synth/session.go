package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Hazenbox/Vani-ai-sub001/cache"
	"github.com/Hazenbox/Vani-ai-sub001/markup"
	"github.com/Hazenbox/Vani-ai-sub001/normalize"
	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

// LineError reports which line of the script a failed render belongs
// to. One failed line aborts the whole run; a half-rendered episode is
// not worth keeping.
type LineError struct {
	LineID string
	Index  int
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Index+1, e.LineID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// NormalizedLine pairs a script line with the text that was actually
// spoken and its rendered length.
type NormalizedLine struct {
	Line       script.DialogueLine
	SpokenText string
	Audio      []byte
	Cached     bool
}

// Result is a completed render: the concatenated episode audio, the
// per-line placements, and the per-line detail.
type Result struct {
	Audio   []byte
	Timings []timeline.SegmentTiming
	Lines   []NormalizedLine
}

// Session renders scripts. Lines render sequentially in script order;
// transient provider failures retry a few times before the run is
// abandoned.
type Session struct {
	provider Provider
	cache    *cache.Disk
	voices   map[script.Speaker]Voice
	norm     normalize.Config
	pauses   timeline.PauseOptions
	logger   *log.Logger

	attempts int
	backoff  time.Duration
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCache enables the render cache.
func WithCache(c *cache.Disk) SessionOption {
	return func(s *Session) { s.cache = c }
}

// WithVoices overrides the speaker-to-voice mapping.
func WithVoices(v map[script.Speaker]Voice) SessionOption {
	return func(s *Session) { s.voices = v }
}

// WithNormalizeConfig overrides the text pipeline configuration.
func WithNormalizeConfig(cfg normalize.Config) SessionOption {
	return func(s *Session) { s.norm = cfg }
}

// WithPauseOptions overrides the pause model.
func WithPauseOptions(opts timeline.PauseOptions) SessionOption {
	return func(s *Session) { s.pauses = opts }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithRetry overrides the retry policy.
func WithRetry(attempts int, backoff time.Duration) SessionOption {
	return func(s *Session) {
		s.attempts = attempts
		s.backoff = backoff
	}
}

// NewSession builds a render session over a provider.
func NewSession(p Provider, opts ...SessionOption) *Session {
	s := &Session{
		provider: p,
		voices:   DefaultVoices(),
		pauses:   timeline.Defaults(),
		logger:   log.Default(),
		attempts: 3,
		backoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run renders every line of the script and assembles the episode.
func (s *Session) Run(ctx context.Context, sc *script.Script) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	rendered := make([]NormalizedLine, 0, len(sc.Lines))
	for i, line := range sc.Lines {
		nl, err := s.renderLine(ctx, line)
		if err != nil {
			return nil, &LineError{LineID: line.ID, Index: i, Err: err}
		}
		s.logger.Info("rendered line",
			"index", i+1, "of", len(sc.Lines),
			"speaker", line.Speaker.String(),
			"bytes", len(nl.Audio),
			"cached", nl.Cached)
		rendered = append(rendered, nl)
	}

	return s.assemble(rendered)
}

// Estimate places the script on the clock without rendering, using the
// speech-rate estimate for line durations. Useful for previewing
// pacing before spending provider credit.
func (s *Session) Estimate(sc *script.Script) ([]timeline.SegmentTiming, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	lines := make([]timeline.Line, len(sc.Lines))
	for i, line := range sc.Lines {
		spoken := normalize.Normalize(line.Text, s.norm)
		lines[i] = timeline.Line{
			Speaker:      line.Speaker,
			Duration:     timeline.EstimateDuration(spoken),
			Interrupted:  markup.EndsWithInterrupt(line.Text),
			Interrupting: markup.StartsWithInterrupt(line.Text),
		}
	}
	return timeline.Compute(lines, s.pauses)
}

func (s *Session) renderLine(ctx context.Context, line script.DialogueLine) (NormalizedLine, error) {
	voice, ok := s.voices[line.Speaker]
	if !ok {
		return NormalizedLine{}, fmt.Errorf("no voice for speaker %q", line.Speaker)
	}

	spoken := normalize.Normalize(line.Text, s.norm)
	if spoken == "" {
		return NormalizedLine{}, errors.New("line normalizes to nothing")
	}

	key := cache.Key(spoken, voice.ID, s.provider.Model(), EncodingMP3)
	if s.cache != nil {
		if audio, ok := s.cache.Get(key); ok {
			return NormalizedLine{Line: line, SpokenText: spoken, Audio: audio, Cached: true}, nil
		}
	}

	audio, err := s.renderWithRetry(ctx, spoken, voice)
	if err != nil {
		return NormalizedLine{}, err
	}

	if s.cache != nil {
		if err := s.cache.Put(key, audio); err != nil {
			s.logger.Warn("cache write failed", "err", err)
		}
	}
	return NormalizedLine{Line: line, SpokenText: spoken, Audio: audio}, nil
}

func (s *Session) renderWithRetry(ctx context.Context, text string, voice Voice) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		audio, err := s.provider.Render(ctx, text, voice)
		if err == nil {
			return audio, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
		if attempt == s.attempts {
			break
		}

		s.logger.Warn("render attempt failed, retrying",
			"attempt", attempt, "max", s.attempts, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.backoff):
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", s.attempts, lastErr)
}

// assemble concatenates line audio with inter-line silence and records
// where each line landed.
func (s *Session) assemble(rendered []NormalizedLine) (*Result, error) {
	lines := make([]timeline.Line, len(rendered))
	for i, nl := range rendered {
		lines[i] = timeline.Line{
			Speaker:      nl.Line.Speaker,
			Duration:     timeline.ByteDuration(len(nl.Audio)),
			Interrupted:  markup.EndsWithInterrupt(nl.Line.Text),
			Interrupting: markup.StartsWithInterrupt(nl.Line.Text),
		}
	}
	timings, err := timeline.Compute(lines, s.pauses)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(silence(timings[0].Start))
	for i, nl := range rendered {
		if i > 0 {
			buf.Write(silence(timings[i].Start - timings[i-1].End))
		}
		buf.Write(nl.Audio)
	}
	buf.Write(silence(timings[0].Start))

	return &Result{
		Audio:   buf.Bytes(),
		Timings: timings,
		Lines:   rendered,
	}, nil
}

// silentFrame is one MPEG-1 Layer III frame of digital silence at
// 44.1 kHz mono, 128 kbps. The side information is all zeros, so a
// decoder produces 1152 zero samples for it. Padding assembled from
// these frames survives decoding; a run of raw zero bytes carries no
// frame sync and would be dropped, shifting every later line earlier
// than its timing.
var silentFrame = func() []byte {
	f := make([]byte, 417)
	f[0], f[1], f[2], f[3] = 0xFF, 0xFB, 0x90, 0xC0
	return f
}()

// frameDuration is the span of one silent frame: 1152 samples at
// 44100 Hz.
const frameDuration = time.Second * 1152 / 44100

// silence returns decodable MP3 silence of approximately d, rounded to
// whole frames.
func silence(d time.Duration) []byte {
	if d <= 0 {
		return nil
	}
	frames := int((d + frameDuration/2) / frameDuration)
	if frames == 0 {
		return nil
	}
	return bytes.Repeat(silentFrame, frames)
}
