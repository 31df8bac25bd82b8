package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Hazenbox/Vani-ai-sub001/markup"
	"github.com/Hazenbox/Vani-ai-sub001/script"
)

var (
	appStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusFlashStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	speakerAStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	speakerBStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	selectedLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236"))

	playingLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("22"))

	plainSegStyle = lipgloss.NewStyle()

	markerSegStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	punctSegStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))

	selectedSegStyle = lipgloss.NewStyle().
				Reverse(true)

	listItemStyle = lipgloss.NewStyle().PaddingLeft(2)

	listSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(0).
				Foreground(lipgloss.Color("170")).
				SetString("> ")
)

// speakerStyle picks the display style for a speaker name.
func speakerStyle(sp script.Speaker) lipgloss.Style {
	if sp == script.SpeakerA {
		return speakerAStyle
	}
	return speakerBStyle
}

// segmentStyle picks the display style for a tokenized segment.
func segmentStyle(seg markup.Segment) lipgloss.Style {
	switch seg.Kind {
	case markup.Marker:
		return markerSegStyle
	case markup.Punctuation:
		return punctSegStyle
	default:
		return plainSegStyle
	}
}
