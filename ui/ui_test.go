package ui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Hazenbox/Vani-ai-sub001/audio"
	"github.com/Hazenbox/Vani-ai-sub001/library"
	"github.com/Hazenbox/Vani-ai-sub001/markup"
	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/synth"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	store, err := library.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	return Deps{
		Store:   store,
		Session: synth.NewSession(&synth.Mock{}, synth.WithLogger(logger)),
		Player:  &audio.MockPlayer{},
		Logger:  logger,
	}
}

func testEditor(t *testing.T) editorModel {
	t.Helper()
	deps := testDeps(t)
	common := &commonModel{cfg: Config{MockSynthesis: true}, deps: deps, player: deps.Player, width: 80}
	ed := newEditorModel(common)
	ed.open("test-ep", &script.Script{
		Title: "Test Episode",
		Lines: []script.DialogueLine{
			script.NewLine(script.SpeakerA, "Arre suno (laughs) kya scene hai"),
			script.NewLine(script.SpeakerB, "Haan bolo, sab badhiya"),
		},
	})
	return ed
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditorSegmentSelectionStartsOnMarker(t *testing.T) {
	ed := testEditor(t)
	ed, _ = ed.update(tea.KeyMsg{Type: tea.KeyTab})

	if ed.segIndex < 0 {
		t.Fatal("tab did not enter segment mode")
	}
	seg := ed.segments[ed.segIndex]
	if seg.Kind != markup.Marker {
		t.Errorf("initial selection is %v, want the marker", seg.Kind)
	}
	if seg.Text != "(laughs)" {
		t.Errorf("selected segment = %q", seg.Text)
	}
}

func TestEditorCycleMarker(t *testing.T) {
	ed := testEditor(t)
	ed, _ = ed.update(tea.KeyMsg{Type: tea.KeyTab})
	before := ed.sc.Lines[0].Text

	ed, _ = ed.update(key("c"))
	after := ed.sc.Lines[0].Text
	if after == before {
		t.Fatal("cycling did not change the line")
	}
	if strings.Contains(after, "(laughs)") {
		t.Errorf("original marker still present: %q", after)
	}
	if !ed.dirty {
		t.Error("edit did not mark the script dirty")
	}
	// The replacement is itself a laughter marker.
	found := false
	for _, seg := range markup.Tokenize(after) {
		if seg.Kind == markup.Marker && seg.Type == markup.TypeLaughter {
			found = true
		}
	}
	if !found {
		t.Errorf("no laughter marker after cycle: %q", after)
	}
}

func TestEditorDeleteMarker(t *testing.T) {
	ed := testEditor(t)
	ed, _ = ed.update(tea.KeyMsg{Type: tea.KeyTab})

	ed, _ = ed.update(key("d"))
	after := ed.sc.Lines[0].Text
	if strings.Contains(after, "(laughs)") {
		t.Errorf("marker survived delete: %q", after)
	}
	for _, seg := range markup.Tokenize(after) {
		if seg.Kind == markup.Marker {
			t.Errorf("unexpected marker in %q", after)
		}
	}
}

func TestEditorEditInvalidatesRender(t *testing.T) {
	ed := testEditor(t)
	ed.hasRender = true
	ed.cursorT = timeline.NewCursor([]timeline.SegmentTiming{
		{Index: 0, Start: 0, End: time.Second},
	})

	ed, _ = ed.update(tea.KeyMsg{Type: tea.KeyTab})
	ed, _ = ed.update(key("d"))

	if ed.hasRender || ed.cursorT != nil {
		t.Error("edit left stale render state")
	}
}

func TestEditorPlaybackNeedsRender(t *testing.T) {
	ed := testEditor(t)
	ed, cmd := ed.update(key(" "))
	if ed.playing {
		t.Error("playback started without a render")
	}
	if cmd == nil {
		t.Error("expected a status flash")
	}
}

func TestEditorFollowsPlayhead(t *testing.T) {
	ed := testEditor(t)
	pcm := make([]byte, audio.PCMBytesPerSecond*10)
	if err := ed.common.player.Play(pcm); err != nil {
		t.Fatal(err)
	}
	ed.hasRender = true
	ed.playing = true
	ed.follow = true
	ed.cursorT = timeline.NewCursor([]timeline.SegmentTiming{
		{Index: 0, Speaker: script.SpeakerA, Start: 0, End: time.Second},
		{Index: 1, Speaker: script.SpeakerB, Start: 1200 * time.Millisecond, End: 9 * time.Second},
	})

	if err := ed.common.player.SeekTo(2 * time.Second); err != nil {
		t.Fatal(err)
	}
	ed, _ = ed.update(playTickMsg(time.Now()))
	if ed.cursor != 1 {
		t.Errorf("playhead follow left cursor at %d, want 1", ed.cursor)
	}
}

func TestLibraryFilterNarrowsList(t *testing.T) {
	deps := testDeps(t)
	common := &commonModel{deps: deps, player: deps.Player}
	lib := newLibraryModel(common)
	lib.setEpisodes([]library.Episode{
		{Slug: "chai-aur-code", Title: "Chai aur Code"},
		{Slug: "monsoon-special", Title: "Monsoon Special"},
	})

	lib, _ = lib.update(key("/"))
	if !lib.filtering {
		t.Fatal("slash did not start filtering")
	}
	lib, _ = lib.update(key("mons"))
	if len(lib.visible) != 1 || lib.visible[0].Slug != "monsoon-special" {
		t.Errorf("filtered to %+v", lib.visible)
	}

	lib, _ = lib.update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(lib.visible) != 2 {
		t.Errorf("esc did not clear filter: %d visible", len(lib.visible))
	}
}

func TestScrubberView(t *testing.T) {
	c := timeline.NewCursor([]timeline.SegmentTiming{
		{Index: 0, Speaker: script.SpeakerA, Start: 0, End: 2 * time.Second},
		{Index: 1, Speaker: script.SpeakerB, Start: 2300 * time.Millisecond, End: 5 * time.Second},
	})
	s := newScrubber()

	out := s.view(c, time.Second, 60)
	if out == "" {
		t.Fatal("empty scrubber for a valid timeline")
	}
	if !strings.ContainsRune(out, '┃') {
		t.Error("no playhead in scrubber output")
	}
	if !strings.ContainsRune(out, '▓') || !strings.ContainsRune(out, '░') {
		t.Error("speaker blocks missing from scrubber")
	}

	if got := s.view(nil, 0, 60); got != "" {
		t.Errorf("scrubber rendered without a timeline: %q", got)
	}
	if got := s.view(c, 0, 5); got != "" {
		t.Errorf("scrubber rendered in a tiny window: %q", got)
	}
}

func TestScrubberTimeAt(t *testing.T) {
	// Width 24 gives a 20-cell strip over 10s: 500ms per cell.
	c := timeline.NewCursor([]timeline.SegmentTiming{
		{Index: 0, Speaker: script.SpeakerA, Start: 0, End: 2 * time.Second},
		{Index: 1, Speaker: script.SpeakerB, Start: 3 * time.Second, End: 10 * time.Second},
	})
	s := newScrubber()

	tests := []struct {
		name string
		col  int
		want time.Duration
		ok   bool
	}{
		{"first cell", 0, 250 * time.Millisecond, true},
		{"mid strip", 3, 1750 * time.Millisecond, true},
		{"late strip", 12, 6250 * time.Millisecond, true},
		{"last cell", 19, 9750 * time.Millisecond, true},
		{"past the strip", 20, 0, false},
		{"left of the strip", -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.timeAt(c, 0, 24, tt.col)
			if ok != tt.ok || got != tt.want {
				t.Errorf("timeAt(col %d) = %v, %v; want %v, %v", tt.col, got, ok, tt.want, tt.ok)
			}
		})
	}

	if _, ok := s.timeAt(nil, 0, 24, 3); ok {
		t.Error("timeAt mapped a column without a timeline")
	}
}

func TestEditorMouseScrub(t *testing.T) {
	ed := testEditor(t)
	ed.common.width = 24
	pcm := make([]byte, audio.PCMBytesPerSecond*10)
	if err := ed.common.player.Play(pcm); err != nil {
		t.Fatal(err)
	}
	ed.hasRender = true
	ed.cursorT = timeline.NewCursor([]timeline.SegmentTiming{
		{Index: 0, Speaker: script.SpeakerA, Start: 0, End: 2 * time.Second},
		{Index: 1, Speaker: script.SpeakerB, Start: 3 * time.Second, End: 10 * time.Second},
	})

	// The strip row sits below the margin, title, blank, two lines, and
	// another blank; its cells start two columns in from the margin.
	row := appStyle.GetMarginTop() + 3 + len(ed.sc.Lines)
	x := func(col int) int { return appStyle.GetMarginLeft() + 2 + col }

	press := tea.MouseMsg{X: x(3), Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	ed, _ = ed.update(press)
	if !ed.scrubbing {
		t.Fatal("press on the strip did not start scrubbing")
	}
	if ed.playhead != 1750*time.Millisecond || ed.cursor != 0 {
		t.Errorf("after press: playhead %v cursor %d", ed.playhead, ed.cursor)
	}

	drag := tea.MouseMsg{X: x(12), Y: row, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
	ed, _ = ed.update(drag)
	if ed.playhead != 6250*time.Millisecond || ed.cursor != 1 {
		t.Errorf("after drag: playhead %v cursor %d", ed.playhead, ed.cursor)
	}

	release := tea.MouseMsg{X: x(12), Y: row, Action: tea.MouseActionRelease}
	ed, cmd := ed.update(release)
	if ed.scrubbing {
		t.Error("release did not end the scrub")
	}
	if !ed.playing || cmd == nil {
		t.Error("release did not resume the tick loop")
	}
	mp := ed.common.player.(*audio.MockPlayer)
	found := false
	for _, op := range mp.Ops {
		if op == "seek" {
			found = true
		}
	}
	if !found {
		t.Error("release did not seek the player")
	}
}

func TestEditorMouseIgnoredOffStrip(t *testing.T) {
	ed := testEditor(t)
	ed.common.width = 24
	ed.hasRender = true
	ed.cursorT = timeline.NewCursor([]timeline.SegmentTiming{
		{Index: 0, Speaker: script.SpeakerA, Start: 0, End: 2 * time.Second},
	})

	press := tea.MouseMsg{X: 5, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	ed, _ = ed.update(press)
	if ed.scrubbing {
		t.Error("press away from the strip started a scrub")
	}
}

func TestScrubberZoomBounds(t *testing.T) {
	s := newScrubber()
	for i := 0; i < 20; i++ {
		s.zoomIn()
	}
	if s.zoom != maxZoom {
		t.Errorf("zoom = %d, want cap %d", s.zoom, maxZoom)
	}
	for i := 0; i < 20; i++ {
		s.zoomOut()
	}
	if s.zoom != 1 {
		t.Errorf("zoom = %d, want floor 1", s.zoom)
	}
}
