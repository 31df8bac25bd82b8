package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hazenbox/Vani-ai-sub001/markup"
	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

// editorModel is the script editor and playback surface for one
// episode. Navigation works at two levels: between lines, and between
// tokenized segments inside the selected line, so a single performance
// marker can be cycled or deleted without touching the words around
// it.
type editorModel struct {
	common *commonModel

	slug   string
	sc     *script.Script
	dirty  bool
	cursor int // selected line

	// Segment selection within the current line. segIndex is -1 when
	// navigating whole lines.
	segments []markup.Segment
	segIndex int

	// Playback.
	cursorT   *timeline.Cursor
	playhead  time.Duration
	playing   bool
	hasRender bool
	follow    bool
	scrubbing bool

	rendering   bool
	renderTotal int

	scrub scrubberModel
}

func newEditorModel(common *commonModel) editorModel {
	return editorModel{
		common:   common,
		segIndex: -1,
		follow:   true,
		scrub:    newScrubber(),
	}
}

// open loads an episode into the editor.
func (m *editorModel) open(slug string, sc *script.Script) {
	m.slug = slug
	m.sc = sc
	m.dirty = false
	m.cursor = 0
	m.segIndex = -1
	m.segments = nil
	m.cursorT = nil
	m.playhead = 0
	m.playing = false
	m.hasRender = false
	m.scrubbing = false
	m.rendering = false
}

// reload swaps in a script re-read from disk, keeping the selection
// close to where it was.
func (m *editorModel) reload(sc *script.Script) {
	m.sc = sc
	m.dirty = false
	if m.cursor >= len(sc.Lines) {
		m.cursor = len(sc.Lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.leaveSegments()
	// Edits invalidate any render timings on screen.
	m.invalidateRender()
}

func (m *editorModel) invalidateRender() {
	m.cursorT = nil
	m.hasRender = false
	m.playing = false
	m.scrubbing = false
	m.playhead = 0
	m.common.player.Stop()
}

func (m *editorModel) line() *script.DialogueLine {
	if m.sc == nil || m.cursor >= len(m.sc.Lines) {
		return nil
	}
	return &m.sc.Lines[m.cursor]
}

// enterSegments tokenizes the current line and selects its first
// marker, or the first segment when the line has none.
func (m *editorModel) enterSegments() {
	ln := m.line()
	if ln == nil {
		return
	}
	m.segments = markup.Tokenize(ln.Text)
	m.segIndex = 0
	for i, seg := range m.segments {
		if seg.Kind == markup.Marker {
			m.segIndex = i
			break
		}
	}
}

func (m *editorModel) leaveSegments() {
	m.segments = nil
	m.segIndex = -1
}

// retokenize refreshes segments after an edit, clamping the selection.
func (m *editorModel) retokenize() {
	ln := m.line()
	if ln == nil || m.segIndex < 0 {
		m.leaveSegments()
		return
	}
	m.segments = markup.Tokenize(ln.Text)
	if m.segIndex >= len(m.segments) {
		m.segIndex = len(m.segments) - 1
	}
}

// cycleMarker replaces the selected marker with the next alternative
// of the same type.
func (m *editorModel) cycleMarker() tea.Cmd {
	ln := m.line()
	if ln == nil || m.segIndex < 0 || m.segIndex >= len(m.segments) {
		return nil
	}
	seg := m.segments[m.segIndex]
	if seg.Kind != markup.Marker || seg.Entry == nil {
		return m.common.flash("not a marker")
	}
	alts := markup.Alternatives(seg.Type, seg.Entry.Literal)
	if len(alts) == 0 {
		return m.common.flash("no alternatives")
	}
	return m.spliceSegment(seg, alts[0])
}

// deleteSegment removes the selected marker or punctuation cue.
func (m *editorModel) deleteSegment() tea.Cmd {
	ln := m.line()
	if ln == nil || m.segIndex < 0 || m.segIndex >= len(m.segments) {
		return nil
	}
	seg := m.segments[m.segIndex]
	if seg.Kind == markup.Plain {
		return m.common.flash("select a marker to delete")
	}
	return m.spliceSegment(seg, "")
}

func (m *editorModel) spliceSegment(seg markup.Segment, replacement string) tea.Cmd {
	ln := m.line()
	if err := m.sc.SpliceText(ln.ID, seg.StartIndex, seg.EndIndex, replacement); err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	m.dirty = true
	m.retokenize()
	m.invalidateRender()
	return nil
}

func (m editorModel) update(msg tea.Msg) (editorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case renderedMsg:
		m.rendering = false
		m.cursorT = timeline.NewCursor(msg.res.Timings)
		m.hasRender = true
		m.playhead = 0
		return m, m.common.loadAudio(msg.res.Audio)

	case estimatedMsg:
		m.cursorT = timeline.NewCursor(msg.timings)
		m.hasRender = false
		return m, m.common.flash("estimated pacing (no audio)")

	case audioReadyMsg:
		m.playing = true
		return m, playTick()

	case playTickMsg:
		if !m.playing {
			return m, nil
		}
		if m.scrubbing {
			// The drag owns the playhead until release.
			return m, playTick()
		}
		m.playhead = m.common.player.Position()
		if m.cursorT != nil {
			if m.follow {
				m.cursor = m.cursorT.IndexAt(m.playhead)
			}
			if m.playhead >= m.cursorT.Duration() {
				m.playing = false
				m.common.player.Stop()
				m.playhead = 0
				return m, nil
			}
		}
		return m, playTick()
	}
	return m, nil
}

// handleMouse scrubs the timeline: pressing or dragging over the strip
// previews the position under the pointer, and the line highlight
// tracks it; releasing commits the seek.
func (m editorModel) handleMouse(msg tea.MouseMsg) (editorModel, tea.Cmd) {
	if m.cursorT == nil || !m.hasRender {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress, tea.MouseActionMotion:
		if msg.Action == tea.MouseActionPress && msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		col, onStrip := m.stripColumn(msg.X, msg.Y)
		if !onStrip && !m.scrubbing {
			return m, nil
		}
		t, ok := m.scrub.timeAt(m.cursorT, m.playhead, m.common.width, col)
		if !ok {
			return m, nil
		}
		m.scrubbing = true
		m.playhead = t
		m.cursor = m.cursorT.IndexAt(t)
		return m, nil

	case tea.MouseActionRelease:
		if !m.scrubbing {
			return m, nil
		}
		m.scrubbing = false
		if err := m.common.player.SeekTo(m.playhead); err != nil {
			return m, func() tea.Msg { return errMsg{err} }
		}
		m.playing = true
		m.follow = true
		return m, playTick()
	}
	return m, nil
}

// stripColumn translates terminal coordinates into a column of the
// scrubber strip, reporting whether the point lands on it.
func (m editorModel) stripColumn(x, y int) (int, bool) {
	if m.sc == nil {
		return 0, false
	}
	// The editor view stacks title, a blank, the lines, and a blank
	// before the strip, inside the app margins.
	row := appStyle.GetMarginTop() + 3 + len(m.sc.Lines)
	col := x - appStyle.GetMarginLeft() - 2 // strip is indented two cells
	return col, y == row && col >= 0
}

func (m editorModel) handleKey(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	// Segment mode.
	if m.segIndex >= 0 {
		switch msg.String() {
		case "esc":
			m.leaveSegments()
		case "left", "h":
			if m.segIndex > 0 {
				m.segIndex--
			}
		case "right", "l":
			if m.segIndex < len(m.segments)-1 {
				m.segIndex++
			}
		case "c":
			cmd := m.cycleMarker()
			return m, cmd
		case "d", "x":
			cmd := m.deleteSegment()
			return m, cmd
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.follow = false
		}
	case "down", "j":
		if m.sc != nil && m.cursor < len(m.sc.Lines)-1 {
			m.cursor++
			m.follow = false
		}
	case "tab":
		m.enterSegments()
	case "y":
		if ln := m.line(); ln != nil {
			if err := clipboard.WriteAll(ln.Text); err != nil {
				return m, func() tea.Msg { return errMsg{err} }
			}
			return m, m.common.flash("yanked line")
		}
	case " ":
		return m.togglePlayback()
	case "enter":
		return m.seekToCursor()
	case "f":
		m.follow = !m.follow
	case "r":
		if m.rendering {
			return m, nil
		}
		m.rendering = true
		m.renderTotal = len(m.sc.Lines)
		return m, m.common.renderScript(m.slug, m.sc)
	case "e":
		return m, m.common.estimateScript(m.sc)
	case "s":
		m.dirty = false
		return m, m.common.saveScript(m.sc)
	case "+", "=":
		m.scrub.zoomIn()
	case "-":
		m.scrub.zoomOut()
	}
	return m, nil
}

func (m editorModel) togglePlayback() (editorModel, tea.Cmd) {
	if !m.hasRender {
		return m, m.common.flash("render first (r)")
	}
	if m.playing {
		m.playing = false
		m.common.player.Pause()
		return m, nil
	}
	m.playing = true
	m.follow = true
	m.common.player.Resume()
	return m, playTick()
}

func (m editorModel) seekToCursor() (editorModel, tea.Cmd) {
	if !m.hasRender || m.cursorT == nil {
		return m, m.common.flash("render first (r)")
	}
	t := m.cursorT.SeekTime(m.cursor)
	if err := m.common.player.SeekTo(t); err != nil {
		return m, func() tea.Msg { return errMsg{err} }
	}
	m.playhead = t
	m.playing = true
	m.follow = true
	return m, playTick()
}

func (m editorModel) view() string {
	if m.sc == nil {
		return statusStyle.Render("nothing open")
	}

	var b strings.Builder
	title := m.sc.Title
	if m.dirty {
		title += " *"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for i, ln := range m.sc.Lines {
		b.WriteString(m.renderLine(i, ln))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cursorT != nil {
		b.WriteString(m.scrub.view(m.cursorT, m.playhead, m.common.width))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m editorModel) renderLine(i int, ln script.DialogueLine) string {
	name := speakerStyle(ln.Speaker).Render(ln.Speaker.String() + ":")

	var body string
	if i == m.cursor && m.segIndex >= 0 {
		var sb strings.Builder
		for si, seg := range m.segments {
			st := segmentStyle(seg)
			if si == m.segIndex {
				st = selectedSegStyle
			}
			sb.WriteString(st.Render(seg.Text))
		}
		body = sb.String()
	} else {
		body = styledLineText(ln.Text)
	}

	row := fmt.Sprintf("%s %s", name, body)
	switch {
	case m.playing && i == m.cursor:
		return playingLineStyle.Render(row)
	case i == m.cursor:
		return selectedLineStyle.Render(row)
	default:
		return row
	}
}

// styledLineText colors markers and punctuation cues inside a line
// without changing its text.
func styledLineText(text string) string {
	var b strings.Builder
	for _, seg := range markup.Tokenize(text) {
		b.WriteString(segmentStyle(seg).Render(seg.Text))
	}
	return b.String()
}

func (m editorModel) statusLine() string {
	if m.rendering {
		return statusStyle.Render(
			fmt.Sprintf("rendering %d lines…", m.renderTotal))
	}

	var parts []string
	if m.hasRender && m.cursorT != nil {
		parts = append(parts, fmt.Sprintf("%s / %s",
			m.playhead.Round(100*time.Millisecond),
			m.cursorT.Duration().Round(100*time.Millisecond)))
	}
	help := "tab segments · space play · enter seek · r render · e estimate · s save · esc back"
	if m.segIndex >= 0 {
		help = "←/→ move · c cycle · d delete · esc lines"
	}
	parts = append(parts, helpStyle.Render(help))
	return strings.Join(parts, "  ")
}
