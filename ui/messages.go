package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Hazenbox/Vani-ai-sub001/library"
	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/synth"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// episodesLoadedMsg delivers the library listing.
type episodesLoadedMsg []library.Episode

// scriptLoadedMsg delivers an opened episode.
type scriptLoadedMsg struct {
	slug string
	sc   *script.Script
}

// scriptReloadedMsg delivers an episode re-read after its file changed
// on disk.
type scriptReloadedMsg struct {
	slug string
	sc   *script.Script
}

// generatedMsg delivers a model-drafted script.
type generatedMsg struct{ sc *script.Script }

// renderedMsg delivers a completed synthesis run.
type renderedMsg struct {
	slug string
	res  *synth.Result
}

// estimatedMsg delivers preview timings computed without rendering.
type estimatedMsg struct{ timings []timeline.SegmentTiming }

// audioReadyMsg says decoded PCM has been loaded into the player.
type audioReadyMsg struct{}

// playTickMsg drives the playback clock while audio runs.
type playTickMsg time.Time

// statusTimeoutMsg clears an ephemeral status message.
type statusTimeoutMsg struct{}

const playTickInterval = 100 * time.Millisecond

func playTick() tea.Cmd {
	return tea.Tick(playTickInterval, func(t time.Time) tea.Msg {
		return playTickMsg(t)
	})
}

const statusMessageTimeout = 3 * time.Second

func statusTimeout() tea.Cmd {
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusTimeoutMsg{}
	})
}
