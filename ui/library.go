package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/Hazenbox/Vani-ai-sub001/library"
)

// libraryModel is the episode browser: a filterable list of stored
// episodes plus a prompt for generating a fresh script from a topic.
type libraryModel struct {
	common *commonModel

	episodes []library.Episode
	visible  []library.Episode
	cursor   int

	filter    textinput.Model
	filtering bool

	topic     textinput.Model
	prompting bool
}

func newLibraryModel(common *commonModel) libraryModel {
	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter"
	filter.CharLimit = 64

	topic := textinput.New()
	topic.Prompt = "topic: "
	topic.Placeholder = "e.g. monsoon chai stories"
	topic.CharLimit = 120

	return libraryModel{
		common: common,
		filter: filter,
		topic:  topic,
	}
}

func (m *libraryModel) setEpisodes(eps []library.Episode) {
	m.episodes = eps
	m.applyFilter()
}

func (m *libraryModel) applyFilter() {
	m.visible = library.Filter(m.episodes, m.filter.Value())
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *libraryModel) selected() (library.Episode, bool) {
	if len(m.visible) == 0 {
		return library.Episode{}, false
	}
	return m.visible[m.cursor], true
}

func (m libraryModel) update(msg tea.Msg) (libraryModel, tea.Cmd) {
	var cmd tea.Cmd

	if m.prompting {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				m.prompting = false
				m.topic.Blur()
				return m, nil
			case "enter":
				topic := strings.TrimSpace(m.topic.Value())
				m.prompting = false
				m.topic.Blur()
				m.topic.SetValue("")
				if topic == "" {
					return m, nil
				}
				return m, m.common.generateScript(topic)
			}
		}
		m.topic, cmd = m.topic.Update(msg)
		return m, cmd
	}

	if m.filtering {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "esc":
				m.filtering = false
				m.filter.Blur()
				m.filter.SetValue("")
				m.applyFilter()
				return m, nil
			case "enter":
				m.filtering = false
				m.filter.Blur()
				return m, nil
			}
		}
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case "/":
			m.filtering = true
			return m, m.filter.Focus()
		case "n":
			m.prompting = true
			return m, m.topic.Focus()
		case "x":
			if ep, ok := m.selected(); ok {
				return m, m.common.deleteEpisode(ep.Slug)
			}
		}
	}
	return m, nil
}

func (m libraryModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Vani — episodes"))
	b.WriteString("\n\n")

	if m.prompting {
		b.WriteString(m.topic.View())
		b.WriteString("\n\n")
	} else if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		if len(m.episodes) == 0 {
			b.WriteString(statusStyle.Render("No episodes yet. Press n to draft one from a topic."))
		} else {
			b.WriteString(statusStyle.Render("Nothing matches the filter."))
		}
		b.WriteString("\n")
	}

	for i, ep := range m.visible {
		title := ep.Title
		if m.common.width > 40 {
			title = truncate.StringWithTail(title, uint(m.common.width-30), "…")
		}
		line := fmt.Sprintf("%s  %s · %s", title,
			statusStyle.Render(ep.SizeLabel()),
			statusStyle.Render(ep.AgeLabel()))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.String() + line)
		} else {
			b.WriteString(listItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter open · n new · / filter · x delete · q quit"))
	return b.String()
}
