package library

import (
	"bytes"
	"testing"
	"time"

	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

func sampleScript(title string) *script.Script {
	return &script.Script{
		Title: title,
		Lines: []script.DialogueLine{
			script.NewLine(script.SpeakerA, "Arre suno na"),
			script.NewLine(script.SpeakerB, "Haan bolo"),
		},
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Chai aur Code", "chai-aur-code"},
		{"  Mumbai!! Local  ", "mumbai-local"},
		{"Ep. 42: Monsoon", "ep-42-monsoon"},
		{"???", "untitled"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStoreSaveLoad(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	slug, err := s.Save(sampleScript("Chai aur Code"))
	if err != nil {
		t.Fatal(err)
	}
	if slug != "chai-aur-code" {
		t.Errorf("slug = %q", slug)
	}

	sc, err := s.LoadScript(slug)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Title != "Chai aur Code" || len(sc.Lines) != 2 {
		t.Errorf("loaded script = %+v", sc)
	}

	if _, err := s.LoadScript("no-such-episode"); err != ErrNotFound {
		t.Errorf("missing slug: err = %v, want ErrNotFound", err)
	}
}

func TestStoreRenderRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	slug, err := s.Save(sampleScript("Monsoon Special"))
	if err != nil {
		t.Fatal(err)
	}

	mp3 := []byte("pretend mp3 bytes")
	timings := []timeline.SegmentTiming{
		{Index: 0, Speaker: script.SpeakerA, Start: 0, End: 2 * time.Second},
		{Index: 1, Speaker: script.SpeakerB, Start: 2300 * time.Millisecond, End: 5 * time.Second},
	}
	if err := s.SaveRender(slug, mp3, timings); err != nil {
		t.Fatal(err)
	}

	gotMP3, gotTimings, err := s.LoadRender(slug)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotMP3, mp3) {
		t.Error("render bytes corrupted")
	}
	if len(gotTimings) != 2 || gotTimings[1].Start != timings[1].Start {
		t.Errorf("timings = %+v", gotTimings)
	}

	if err := s.SaveRender("nope", mp3, timings); err != ErrNotFound {
		t.Errorf("render to missing slug: err = %v, want ErrNotFound", err)
	}
	if _, _, err := s.LoadRender("nope"); err != ErrNotFound {
		t.Errorf("load from missing slug: err = %v, want ErrNotFound", err)
	}
}

func TestStoreListAndDelete(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, title := range []string{"Pehla Episode", "Doosra Episode"} {
		if _, err := s.Save(sampleScript(title)); err != nil {
			t.Fatal(err)
		}
	}

	eps, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 2 {
		t.Fatalf("listed %d episodes, want 2", len(eps))
	}
	for _, ep := range eps {
		if ep.HasRender() {
			t.Errorf("%s claims a render", ep.Slug)
		}
		if ep.SizeLabel() != "not rendered" {
			t.Errorf("size label = %q", ep.SizeLabel())
		}
	}

	if err := s.Delete(eps[0].Slug); err != nil {
		t.Fatal(err)
	}
	eps, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 {
		t.Errorf("listed %d episodes after delete", len(eps))
	}

	if err := s.Delete("ghost"); err != ErrNotFound {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}
}

func TestFilter(t *testing.T) {
	eps := []Episode{
		{Slug: "chai-aur-code", Title: "Chai aur Code"},
		{Slug: "mumbai-local", Title: "Mumbai Local"},
		{Slug: "monsoon-special", Title: "Monsoon Special"},
	}

	if got := Filter(eps, ""); len(got) != 3 {
		t.Errorf("empty query narrowed to %d", len(got))
	}
	got := Filter(eps, "mons")
	if len(got) == 0 || got[0].Slug != "monsoon-special" {
		t.Errorf("Filter(mons) = %+v", got)
	}
	if got := Filter(eps, "zzzz"); len(got) != 0 {
		t.Errorf("no-match query returned %d", len(got))
	}
}
