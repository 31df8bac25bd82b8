package ui

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

// scrubberModel draws the episode as a horizontal strip of speaker
// blocks with a playhead. Zooming widens the strip beyond the window,
// keeping the playhead in view. Dragging over the strip scrubs; the
// column-to-time mapping is recomputed from scratch on every event, so
// view and drag can never disagree.
type scrubberModel struct {
	zoom int // 1..maxZoom, multiples of the window width
}

const maxZoom = 8

func newScrubber() scrubberModel {
	return scrubberModel{zoom: 1}
}

func (s *scrubberModel) zoomIn() {
	if s.zoom < maxZoom {
		s.zoom++
	}
}

func (s *scrubberModel) zoomOut() {
	if s.zoom > 1 {
		s.zoom--
	}
}

// geometry lays out the zoomed strip for a window width: total cell
// count, visible window size, the window's offset into the strip, and
// the time span of one cell. Reports false when there is nothing to
// draw.
func (s scrubberModel) geometry(c *timeline.Cursor, playhead time.Duration, width int) (cells, window, offset int, perCell time.Duration, ok bool) {
	if c == nil || c.Len() == 0 || width < 16 {
		return 0, 0, 0, 0, false
	}
	total := c.Duration()
	if total <= 0 {
		return 0, 0, 0, 0, false
	}

	window = width - 4
	cells = window * s.zoom
	if cells < 8 {
		cells = 8
	}
	perCell = total / time.Duration(cells)
	if perCell <= 0 {
		perCell = time.Millisecond
	}

	// Slide the window over the zoomed strip so the playhead stays
	// visible.
	if cells > window {
		head := int(playhead / perCell)
		if head >= cells {
			head = cells - 1
		}
		offset = head - window/2
		if offset < 0 {
			offset = 0
		}
		if offset+window > cells {
			offset = cells - window
		}
	}
	return cells, window, offset, perCell, true
}

// timeAt maps a column of the visible strip (0-based from its left
// edge) to the playback position at the center of that cell.
func (s scrubberModel) timeAt(c *timeline.Cursor, playhead time.Duration, width, col int) (time.Duration, bool) {
	cells, window, offset, perCell, ok := s.geometry(c, playhead, width)
	if !ok || col < 0 || col >= window {
		return 0, false
	}
	cell := offset + col
	if cell >= cells {
		cell = cells - 1
	}
	t := perCell*time.Duration(cell) + perCell/2
	if total := c.Duration(); t > total {
		t = total
	}
	return t, true
}

// view renders the strip for the given window width.
func (s scrubberModel) view(c *timeline.Cursor, playhead time.Duration, width int) string {
	cells, window, offset, perCell, ok := s.geometry(c, playhead, width)
	if !ok {
		return ""
	}

	// One rune per cell: speaker block, gap, or playhead.
	strip := make([]rune, cells)
	for i := range strip {
		strip[i] = '·'
	}
	for i := 0; i < c.Len(); i++ {
		tm := c.Timing(i)
		from := int(tm.Start / perCell)
		to := int(tm.End / perCell)
		if to >= cells {
			to = cells - 1
		}
		ch := '▓'
		if tm.Speaker == script.SpeakerB {
			ch = '░'
		}
		for j := from; j <= to && j < cells; j++ {
			strip[j] = ch
		}
	}

	head := int(playhead / perCell)
	if head >= cells {
		head = cells - 1
	}
	if head >= 0 {
		strip[head] = '┃'
	}

	span := window
	if cells < span {
		span = cells
	}
	visible := string(strip[offset : offset+span])

	label := playhead.Round(time.Second).String()
	pad := width - 4 - runewidth.StringWidth(visible) - runewidth.StringWidth(label)
	if pad < 1 {
		pad = 1
	}
	return "  " + visible + strings.Repeat(" ", pad) + statusStyle.Render(label)
}
