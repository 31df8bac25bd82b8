package timeline

import "time"

// Cursor maps a playback clock position to the dialogue line being
// spoken, and back. Timings must be ordered by start, which Compute
// guarantees.
type Cursor struct {
	timings []SegmentTiming
}

// NewCursor wraps a computed timeline for playback lookups.
func NewCursor(timings []SegmentTiming) *Cursor {
	return &Cursor{timings: timings}
}

// IndexAt returns the index of the line active at time t. Before the
// first line starts it returns 0. During the gap between two lines the
// previous line stays active, so the highlighted line never flickers
// off mid-pause. At or past the final line's end it returns the last
// index.
func (c *Cursor) IndexAt(t time.Duration) int {
	if len(c.timings) == 0 {
		return 0
	}
	// Binary search for the last line with Start <= t.
	lo, hi := 0, len(c.timings)-1
	if t < c.timings[0].Start {
		return 0
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.timings[mid].Start <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// SeekTime returns the start time of line i, clamped into range.
func (c *Cursor) SeekTime(i int) time.Duration {
	if len(c.timings) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.timings) {
		i = len(c.timings) - 1
	}
	return c.timings[i].Start
}

// Duration is the total length of the conversation: the end of the
// last line.
func (c *Cursor) Duration() time.Duration {
	if len(c.timings) == 0 {
		return 0
	}
	return c.timings[len(c.timings)-1].End
}

// Len reports the number of placed lines.
func (c *Cursor) Len() int { return len(c.timings) }

// Timing returns the placement of line i, clamped into range. An
// empty cursor yields the zero placement.
func (c *Cursor) Timing(i int) SegmentTiming {
	if len(c.timings) == 0 {
		return SegmentTiming{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.timings) {
		i = len(c.timings) - 1
	}
	return c.timings[i]
}
