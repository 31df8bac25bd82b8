// Package ui is the terminal interface: an episode browser over the
// library and a script editor with synchronized playback.
package ui

import (
	"context"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/Hazenbox/Vani-ai-sub001/audio"
	"github.com/Hazenbox/Vani-ai-sub001/library"
	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/scriptgen"
	"github.com/Hazenbox/Vani-ai-sub001/synth"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

// Deps are the live services the UI drives. main wires them from
// configuration; tests wire mocks.
type Deps struct {
	Store     *library.Store
	Session   *synth.Session
	Generator scriptgen.Generator
	Player    audio.Player
	Logger    *log.Logger
}

// NewProgram builds the Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

// state is the top-level application state.
type state int

const (
	stateLibrary state = iota
	stateEditor
)

// commonModel carries what every sub-model needs.
type commonModel struct {
	cfg    Config
	deps   Deps
	player audio.Player
	width  int
	height int
}

type model struct {
	common *commonModel
	state  state

	library libraryModel
	editor  editorModel

	status   string
	lastErr  error
	quitting bool

	watcher *fsnotify.Watcher
}

func newModel(cfg Config, deps Deps) *model {
	common := &commonModel{cfg: cfg, deps: deps, player: deps.Player}
	m := &model{
		common:  common,
		state:   stateLibrary,
		library: newLibraryModel(common),
		editor:  newEditorModel(common),
	}
	if cfg.WatchScripts {
		if w, err := fsnotify.NewWatcher(); err == nil {
			m.watcher = w
		} else {
			deps.Logger.Warn("script watching unavailable", "err", err)
		}
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.common.loadEpisodes(), m.waitForFileEvent())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "q":
			// q quits from the library; the editor uses esc to back
			// out so a stray q doesn't lose the session.
			if m.state == stateLibrary && !m.library.filtering && !m.library.prompting {
				return m.quit()
			}
		case "esc":
			if m.state == stateEditor && m.editor.segIndex < 0 {
				return m.closeEditor()
			}
		case "enter":
			if m.state == stateLibrary && !m.library.filtering && !m.library.prompting {
				if ep, ok := m.library.selected(); ok {
					return m, m.common.openEpisode(ep.Slug)
				}
				return m, nil
			}
		}

	case errMsg:
		m.lastErr = msg.err
		m.editor.rendering = false
		m.common.deps.Logger.Error("ui error", "err", msg.err)
		return m, statusTimeout()

	case flashMsg:
		m.status = string(msg)
		return m, statusTimeout()

	case statusTimeoutMsg:
		m.status = ""
		m.lastErr = nil
		return m, nil

	case episodesLoadedMsg:
		m.library.setEpisodes(msg)
		return m, nil

	case scriptLoadedMsg:
		m.state = stateEditor
		m.editor.open(msg.slug, msg.sc)
		m.watchEpisode(msg.slug)
		return m, nil

	case scriptReloadedMsg:
		if m.state == stateEditor && m.editor.slug == msg.slug {
			m.editor.reload(msg.sc)
			m.status = "reloaded from disk"
			return m, statusTimeout()
		}
		return m, nil

	case generatedMsg:
		// Drafts are saved immediately so nothing is lost if the
		// session dies.
		return m, m.common.saveAndOpen(msg.sc)

	case fileEventMsg:
		cmds = append(cmds, m.handleFileEvent(fsnotify.Event(msg)), m.waitForFileEvent())
	}

	switch m.state {
	case stateLibrary:
		lib, cmd := m.library.update(msg)
		m.library = lib
		cmds = append(cmds, cmd)
	case stateEditor:
		ed, cmd := m.editor.update(msg)
		m.editor = ed
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case stateLibrary:
		body = m.library.view()
	case stateEditor:
		body = m.editor.view()
	}

	if m.lastErr != nil {
		body += "\n" + errorStyle.Render("error: "+m.lastErr.Error())
	} else if m.status != "" {
		body += "\n" + statusFlashStyle.Render(m.status)
	}
	return appStyle.Render(body)
}

func (m *model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.common.player.Close()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m, tea.Quit
}

func (m *model) closeEditor() (tea.Model, tea.Cmd) {
	m.common.player.Stop()
	m.state = stateLibrary
	return m, m.common.loadEpisodes()
}

// File watching.

type fileEventMsg fsnotify.Event

func (m *model) watchEpisode(slug string) {
	if m.watcher == nil {
		return
	}
	// Watching the directory, not the file: editors that write via
	// rename would otherwise drop the watch.
	dir := filepath.Join(m.common.deps.Store.Root(), slug)
	if err := m.watcher.Add(dir); err != nil {
		m.common.deps.Logger.Warn("watch failed", "dir", dir, "err", err)
	}
}

func (m *model) waitForFileEvent() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 &&
					filepath.Base(ev.Name) == "script.json" {
					return fileEventMsg(ev)
				}
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
				return errMsg{err}
			}
		}
	}
}

func (m *model) handleFileEvent(ev fsnotify.Event) tea.Cmd {
	slug := filepath.Base(filepath.Dir(ev.Name))
	if m.state != stateEditor || m.editor.slug != slug || m.editor.dirty {
		// Unsaved edits win over disk changes.
		return nil
	}
	store := m.common.deps.Store
	return func() tea.Msg {
		sc, err := store.LoadScript(slug)
		if err != nil {
			return errMsg{err}
		}
		return scriptReloadedMsg{slug: slug, sc: sc}
	}
}

// Commands shared between sub-models.

type flashMsg string

func (c *commonModel) flash(s string) tea.Cmd {
	return func() tea.Msg { return flashMsg(s) }
}

func (c *commonModel) loadEpisodes() tea.Cmd {
	store := c.deps.Store
	return func() tea.Msg {
		eps, err := store.List()
		if err != nil {
			return errMsg{err}
		}
		return episodesLoadedMsg(eps)
	}
}

func (c *commonModel) openEpisode(slug string) tea.Cmd {
	store := c.deps.Store
	return func() tea.Msg {
		sc, err := store.LoadScript(slug)
		if err != nil {
			return errMsg{err}
		}
		return scriptLoadedMsg{slug: slug, sc: sc}
	}
}

func (c *commonModel) deleteEpisode(slug string) tea.Cmd {
	store := c.deps.Store
	return func() tea.Msg {
		if err := store.Delete(slug); err != nil {
			return errMsg{err}
		}
		eps, err := store.List()
		if err != nil {
			return errMsg{err}
		}
		return episodesLoadedMsg(eps)
	}
}

func (c *commonModel) generateScript(topic string) tea.Cmd {
	gen := c.deps.Generator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		sc, err := gen.Generate(ctx, topic)
		if err != nil {
			return errMsg{err}
		}
		return generatedMsg{sc: sc}
	}
}

func (c *commonModel) saveAndOpen(sc *script.Script) tea.Cmd {
	store := c.deps.Store
	return func() tea.Msg {
		slug, err := store.Save(sc)
		if err != nil {
			return errMsg{err}
		}
		return scriptLoadedMsg{slug: slug, sc: sc}
	}
}

func (c *commonModel) saveScript(sc *script.Script) tea.Cmd {
	store := c.deps.Store
	return func() tea.Msg {
		if _, err := store.Save(sc); err != nil {
			return errMsg{err}
		}
		return flashMsg("saved")
	}
}

func (c *commonModel) renderScript(slug string, sc *script.Script) tea.Cmd {
	deps := c.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		res, err := deps.Session.Run(ctx, sc)
		if err != nil {
			return errMsg{err}
		}
		if err := deps.Store.SaveRender(slug, res.Audio, res.Timings); err != nil {
			deps.Logger.Warn("could not persist render", "err", err)
		}
		return renderedMsg{slug: slug, res: res}
	}
}

func (c *commonModel) estimateScript(sc *script.Script) tea.Cmd {
	session := c.deps.Session
	return func() tea.Msg {
		timings, err := session.Estimate(sc)
		if err != nil {
			return errMsg{err}
		}
		return estimatedMsg{timings: timings}
	}
}

// loadAudio decodes episode MP3 to PCM and hands it to the player.
// With mock synthesis the bytes are already sized to real time, so
// they feed the clock directly.
func (c *commonModel) loadAudio(mp3 []byte) tea.Cmd {
	player := c.player
	mock := c.cfg.MockSynthesis
	return func() tea.Msg {
		pcm := mp3
		if !mock {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			var err error
			pcm, err = audio.DecodeMP3(ctx, mp3)
			if err != nil {
				return errMsg{err}
			}
		} else {
			// Re-scale mock bytes from MP3 rate to PCM rate so the
			// playback clock matches the timings.
			d := timeline.ByteDuration(len(mp3))
			pcm = make([]byte, audio.PCMOffset(d))
		}
		if len(pcm) == 0 {
			return errMsg{errEmptyAudio}
		}
		if err := player.Play(pcm); err != nil {
			return errMsg{err}
		}
		return audioReadyMsg{}
	}
}

var errEmptyAudio = errDecode("decoded audio is empty")

type errDecode string

func (e errDecode) Error() string { return string(e) }
