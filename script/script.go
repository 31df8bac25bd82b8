// Package script holds the dialogue script model shared by the editor,
// the normalization pipeline and the synthesis runner.
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Speaker identifies one of the two fixed dialogue voices.
type Speaker int

const (
	// SpeakerA is the first voice ("Rahul").
	SpeakerA Speaker = iota
	// SpeakerB is the second voice ("Anjali").
	SpeakerB
)

// Display names carried over from the original show format.
var speakerNames = [...]string{"Rahul", "Anjali"}

// String returns the display name of the speaker.
func (s Speaker) String() string {
	if s < SpeakerA || s > SpeakerB {
		return "unknown"
	}
	return speakerNames[s]
}

// Other returns the opposite speaker.
func (s Speaker) Other() Speaker {
	if s == SpeakerA {
		return SpeakerB
	}
	return SpeakerA
}

// ParseSpeaker resolves a display name to a Speaker.
func ParseSpeaker(name string) (Speaker, error) {
	for i, n := range speakerNames {
		if strings.EqualFold(name, n) {
			return Speaker(i), nil
		}
	}
	return SpeakerA, fmt.Errorf("unknown speaker %q", name)
}

// MarshalJSON encodes the speaker as its display name.
func (s Speaker) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a display name into a Speaker.
func (s *Speaker) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSpeaker(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DialogueLine is a single line of the script. The ID is stable across
// edits and joins the authoring view with the timing view.
type DialogueLine struct {
	ID      string  `json:"id"`
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// NewLine creates a line with a fresh stable ID.
func NewLine(speaker Speaker, text string) DialogueLine {
	return DialogueLine{
		ID:      uuid.NewString(),
		Speaker: speaker,
		Text:    text,
	}
}

// Script is an ordered two-speaker dialogue.
type Script struct {
	Title     string         `json:"title"`
	Lines     []DialogueLine `json:"script"`
	SourceURL string         `json:"source_url,omitempty"`
}

// Errors returned by script editing operations.
var (
	ErrLineNotFound = errors.New("dialogue line not found")
	ErrEmptyScript  = errors.New("script has no lines")
)

// Index returns the position of the line with the given ID.
func (s *Script) Index(id string) (int, error) {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrLineNotFound, id)
}

// Line returns the line with the given ID.
func (s *Script) Line(id string) (*DialogueLine, error) {
	i, err := s.Index(id)
	if err != nil {
		return nil, err
	}
	return &s.Lines[i], nil
}

// ReplaceText replaces the whole text of a line.
func (s *Script) ReplaceText(id, text string) error {
	line, err := s.Line(id)
	if err != nil {
		return err
	}
	line.Text = text
	return nil
}

// SpliceText replaces the byte range [start, end) of a line's text with
// the replacement. Marker edits in the editor go through here so that
// re-tokenization of the updated text stays correct. Out-of-range
// offsets are clamped to the text bounds.
func (s *Script) SpliceText(id string, start, end int, replacement string) error {
	line, err := s.Line(id)
	if err != nil {
		return err
	}
	n := len(line.Text)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	if end > n {
		end = n
	}
	line.Text = line.Text[:start] + replacement + line.Text[end:]
	return nil
}

// Insert adds a line after the line with the given ID. An empty ID
// inserts at the front.
func (s *Script) Insert(afterID string, line DialogueLine) error {
	if afterID == "" {
		s.Lines = append([]DialogueLine{line}, s.Lines...)
		return nil
	}
	i, err := s.Index(afterID)
	if err != nil {
		return err
	}
	s.Lines = append(s.Lines, DialogueLine{})
	copy(s.Lines[i+2:], s.Lines[i+1:])
	s.Lines[i+1] = line
	return nil
}

// Remove deletes the line with the given ID.
func (s *Script) Remove(id string) error {
	i, err := s.Index(id)
	if err != nil {
		return err
	}
	s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	return nil
}

// Validate checks the script is usable for synthesis.
func (s *Script) Validate() error {
	if len(s.Lines) == 0 {
		return ErrEmptyScript
	}
	for i, line := range s.Lines {
		if line.ID == "" {
			return fmt.Errorf("line %d has no id", i)
		}
	}
	return nil
}

// EnsureIDs assigns IDs to lines that are missing one. Scripts loaded
// from hand-written or generated JSON usually arrive without IDs.
func (s *Script) EnsureIDs() {
	for i := range s.Lines {
		if s.Lines[i].ID == "" {
			s.Lines[i].ID = uuid.NewString()
		}
	}
}

// Load reads a script from a JSON file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read script: %w", err)
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unable to parse script: %w", err)
	}
	s.EnsureIDs()
	return &s, nil
}

// Save writes the script as JSON, atomically via a temp file rename.
func (s *Script) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode script: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create script directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("unable to write script: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to replace script: %w", err)
	}
	return nil
}
