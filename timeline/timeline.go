// Package timeline places rendered dialogue lines on a shared clock.
// Given per-line audio durations it computes when each line starts and
// ends, inserting conversational pauses between lines: short when a
// speaker keeps the floor mid-thought, longer on a speaker change, and
// nearly nothing when one speaker cuts the other off.
package timeline

import (
	"errors"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/Hazenbox/Vani-ai-sub001/script"
)

// Line is one rendered dialogue line waiting for placement.
type Line struct {
	Speaker  script.Speaker
	Duration time.Duration

	// Interrupted marks a line that trails off mid-sentence;
	// Interrupting marks a line that barges in. When an interrupted
	// line is followed by an interrupting one, the gap between them
	// collapses to the handoff pause.
	Interrupted  bool
	Interrupting bool
}

// SegmentTiming is a placed line: absolute start and end on the
// conversation clock.
type SegmentTiming struct {
	Index   int            `json:"index"`
	Speaker script.Speaker `json:"speaker"`
	Start   time.Duration  `json:"start"`
	End     time.Duration  `json:"end"`
}

// PauseOptions tunes the gaps between lines. Zero fields take the
// defaults; call Defaults for the full set.
type PauseOptions struct {
	// Base is the gap when the same speaker continues.
	Base time.Duration
	// SpeakerChange is the gap when the floor changes hands.
	SpeakerChange time.Duration
	// Handoff is the gap after an interrupted line into an
	// interrupting one.
	Handoff time.Duration
	// Min and Max clamp every computed gap. Handoff sits at Min so it
	// survives the clamp.
	Min time.Duration
	Max time.Duration
	// Lead is the silence before the first line.
	Lead time.Duration
	// Jitter adds up to ±Jitter of variation per gap when Rand is
	// set. Nil Rand produces exact gaps.
	Jitter time.Duration
	Rand   *rand.Rand
}

// Defaults returns the standard pause model.
func Defaults() PauseOptions {
	return PauseOptions{
		Base:          450 * time.Millisecond,
		SpeakerChange: 250 * time.Millisecond,
		Handoff:       50 * time.Millisecond,
		Min:           50 * time.Millisecond,
		Max:           1200 * time.Millisecond,
		Lead:          500 * time.Millisecond,
		Jitter:        50 * time.Millisecond,
	}
}

func (o PauseOptions) withDefaults() PauseOptions {
	d := Defaults()
	if o.Base == 0 {
		o.Base = d.Base
	}
	if o.SpeakerChange == 0 {
		o.SpeakerChange = d.SpeakerChange
	}
	if o.Handoff == 0 {
		o.Handoff = d.Handoff
	}
	if o.Min == 0 {
		o.Min = d.Min
	}
	if o.Max == 0 {
		o.Max = d.Max
	}
	if o.Lead == 0 {
		o.Lead = d.Lead
	}
	return o
}

// ErrNoLines is returned when there is nothing to place.
var ErrNoLines = errors.New("timeline: no lines")

// Compute places every line on the clock. The first line starts after
// the lead-in; each later line starts after the previous line's end
// plus the pause between them.
func Compute(lines []Line, opts PauseOptions) ([]SegmentTiming, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	opts = opts.withDefaults()

	timings := make([]SegmentTiming, len(lines))
	cursor := opts.Lead
	for i, ln := range lines {
		if i > 0 {
			cursor += pauseBefore(lines, i, opts)
		}
		timings[i] = SegmentTiming{
			Index:   i,
			Speaker: ln.Speaker,
			Start:   cursor,
			End:     cursor + ln.Duration,
		}
		cursor = timings[i].End
	}
	return timings, nil
}

// pauseBefore computes the gap preceding lines[i].
func pauseBefore(lines []Line, i int, opts PauseOptions) time.Duration {
	prev, cur := lines[i-1], lines[i]

	// An interrupt handoff overrides everything else.
	if prev.Interrupted && cur.Interrupting {
		return clamp(opts.Handoff, opts)
	}

	p := opts.Base
	if cur.Speaker != prev.Speaker {
		p = opts.SpeakerChange
	}

	// Conversations breathe: openings run tight, the middle relaxes,
	// and the close slows slightly.
	switch pos := positionFifth(i, len(lines)); {
	case pos == 0:
		p = scale(p, 0.9)
	case pos == 4:
		p = scale(p, 1.1)
	default:
		p = scale(p, 1.15)
	}

	if opts.Rand != nil && opts.Jitter > 0 {
		j := time.Duration(opts.Rand.Int63n(int64(2*opts.Jitter+1))) - opts.Jitter
		p += j
	}
	return clamp(p, opts)
}

// positionFifth buckets index i of n into fifths 0..4.
func positionFifth(i, n int) int {
	if n <= 1 {
		return 0
	}
	pos := i * 5 / n
	if pos > 4 {
		pos = 4
	}
	return pos
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}

func clamp(d time.Duration, opts PauseOptions) time.Duration {
	if d < opts.Min {
		return opts.Min
	}
	if d > opts.Max {
		return opts.Max
	}
	return d
}

// Speech-rate estimate used before real audio exists: roughly fifteen
// characters of dialogue per second.
const runesPerSecond = 15

// EstimateDuration guesses how long a line of text takes to speak.
func EstimateDuration(text string) time.Duration {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return time.Duration(float64(n) / runesPerSecond * float64(time.Second))
}

// bytesPerSecond matches 128 kbps MP3 output.
const bytesPerSecond = 16000

// ByteDuration converts a rendered MP3 byte count to playing time.
func ByteDuration(n int) time.Duration {
	return time.Duration(float64(n) / bytesPerSecond * float64(time.Second))
}
