package script

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSpeakerRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		speaker Speaker
		display string
	}{
		{"speaker A", SpeakerA, "Rahul"},
		{"speaker B", SpeakerB, "Anjali"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.speaker.String(); got != tt.display {
				t.Errorf("String() = %q, want %q", got, tt.display)
			}
			parsed, err := ParseSpeaker(tt.display)
			if err != nil {
				t.Fatalf("ParseSpeaker(%q) failed: %v", tt.display, err)
			}
			if parsed != tt.speaker {
				t.Errorf("ParseSpeaker(%q) = %v, want %v", tt.display, parsed, tt.speaker)
			}
		})
	}

	if _, err := ParseSpeaker("Priya"); err == nil {
		t.Error("expected error for unknown speaker name")
	}
}

func TestSpeakerOther(t *testing.T) {
	if SpeakerA.Other() != SpeakerB {
		t.Error("SpeakerA.Other() should be SpeakerB")
	}
	if SpeakerB.Other() != SpeakerA {
		t.Error("SpeakerB.Other() should be SpeakerA")
	}
}

func sampleScript() *Script {
	return &Script{
		Title: "Mumbai Indians Ka Kahaani",
		Lines: []DialogueLine{
			NewLine(SpeakerA, "Arey yaar, tune dekha?"),
			NewLine(SpeakerB, "Kya dekha?"),
			NewLine(SpeakerA, "(excited) Mumbai Indians!"),
		},
	}
}

func TestSpliceText(t *testing.T) {
	s := sampleScript()
	id := s.Lines[2].ID

	// Delete the marker "(excited) " at [0, 10).
	if err := s.SpliceText(id, 0, 10, ""); err != nil {
		t.Fatalf("SpliceText failed: %v", err)
	}
	if got := s.Lines[2].Text; got != "Mumbai Indians!" {
		t.Errorf("after splice: %q", got)
	}

	// Replace with a different marker.
	if err := s.SpliceText(id, 0, 0, "(laughs) "); err != nil {
		t.Fatalf("SpliceText failed: %v", err)
	}
	if got := s.Lines[2].Text; got != "(laughs) Mumbai Indians!" {
		t.Errorf("after insert splice: %q", got)
	}
}

func TestSpliceTextClampsBounds(t *testing.T) {
	s := sampleScript()
	id := s.Lines[1].ID

	if err := s.SpliceText(id, -4, 1000, "Haan?"); err != nil {
		t.Fatalf("SpliceText failed: %v", err)
	}
	if got := s.Lines[1].Text; got != "Haan?" {
		t.Errorf("clamped splice produced %q", got)
	}
}

func TestInsertAndRemove(t *testing.T) {
	s := sampleScript()
	first := s.Lines[0].ID

	added := NewLine(SpeakerB, "Bilkul nahi.")
	if err := s.Insert(first, added); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if s.Lines[1].ID != added.ID {
		t.Errorf("inserted line at index %d, want 1", mustIndex(t, s, added.ID))
	}
	if len(s.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(s.Lines))
	}

	if err := s.Remove(added.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(s.Lines) != 3 {
		t.Fatalf("expected 3 lines after remove, got %d", len(s.Lines))
	}
	if _, err := s.Index(added.ID); err == nil {
		t.Error("removed line still present")
	}
}

func TestInsertAtFront(t *testing.T) {
	s := sampleScript()
	added := NewLine(SpeakerB, "Suno!")
	if err := s.Insert("", added); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if s.Lines[0].ID != added.ID {
		t.Error("expected inserted line at front")
	}
}

func TestEditUnknownLine(t *testing.T) {
	s := sampleScript()
	if err := s.ReplaceText("nope", "x"); err == nil {
		t.Error("expected error for unknown line id")
	}
	if err := s.Remove("nope"); err == nil {
		t.Error("expected error for unknown line id")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := sampleScript()
	path := filepath.Join(t.TempDir(), "script.json")

	if err := s.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Title != s.Title {
		t.Errorf("title = %q, want %q", loaded.Title, s.Title)
	}
	if len(loaded.Lines) != len(s.Lines) {
		t.Fatalf("got %d lines, want %d", len(loaded.Lines), len(s.Lines))
	}
	for i := range s.Lines {
		if loaded.Lines[i] != s.Lines[i] {
			t.Errorf("line %d: got %+v, want %+v", i, loaded.Lines[i], s.Lines[i])
		}
	}
}

func TestLoadAssignsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	raw := `{"title":"T","script":[{"speaker":"Rahul","text":"Hello"},{"speaker":"Anjali","text":"Hi"}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, line := range s.Lines {
		if line.ID == "" {
			t.Errorf("line %d has empty id", i)
		}
	}
	if s.Lines[0].ID == s.Lines[1].ID {
		t.Error("assigned ids are not unique")
	}
}

func TestValidate(t *testing.T) {
	empty := &Script{Title: "empty"}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty script")
	}
	if err := sampleScript().Validate(); err != nil {
		t.Errorf("valid script rejected: %v", err)
	}
}

func mustIndex(t *testing.T, s *Script, id string) int {
	t.Helper()
	i, err := s.Index(id)
	if err != nil {
		t.Fatalf("Index(%q) failed: %v", id, err)
	}
	return i
}
