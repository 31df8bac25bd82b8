// Package library is the on-disk home for authored episodes. Each
// episode keeps its script, its rendered audio, and the line timings
// side by side in one directory, so a project can be reopened, edited,
// and re-rendered later.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"

	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/timeline"
)

const (
	scriptFile  = "script.json"
	renderFile  = "render.mp3"
	timingsFile = "timings.json"
)

// ErrNotFound is returned when no episode exists under a slug.
var ErrNotFound = errors.New("library: episode not found")

// Episode is one stored project.
type Episode struct {
	Slug     string
	Title    string
	Path     string
	Modified time.Time

	// RenderSize is the rendered audio size in bytes, zero when the
	// episode has never been rendered.
	RenderSize int64
}

// HasRender reports whether rendered audio exists on disk.
func (e Episode) HasRender() bool { return e.RenderSize > 0 }

// SizeLabel is a human-readable render size for list views.
func (e Episode) SizeLabel() string {
	if !e.HasRender() {
		return "not rendered"
	}
	return humanize.Bytes(uint64(e.RenderSize))
}

// AgeLabel is a human-readable modification age for list views.
func (e Episode) AgeLabel() string {
	return humanize.Time(e.Modified)
}

// Store manages the episodes directory.
type Store struct {
	root string
}

// Open opens (or creates) a library rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the library directory.
func (s *Store) Root() string { return s.root }

var slugScrub = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a directory name from an episode title.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugScrub.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

// Save writes the script under its title's slug and returns the slug.
// An existing episode with the same slug is overwritten.
func (s *Store) Save(sc *script.Script) (string, error) {
	if err := sc.Validate(); err != nil {
		return "", err
	}
	slug := Slugify(sc.Title)
	dir := filepath.Join(s.root, slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create episode dir: %w", err)
	}
	if err := sc.Save(filepath.Join(dir, scriptFile)); err != nil {
		return "", err
	}
	return slug, nil
}

// LoadScript reads the script of an episode.
func (s *Store) LoadScript(slug string) (*script.Script, error) {
	sc, err := script.Load(filepath.Join(s.root, slug, scriptFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return sc, err
}

// SaveRender stores rendered audio and its timings next to the script.
func (s *Store) SaveRender(slug string, mp3 []byte, timings []timeline.SegmentTiming) error {
	dir := filepath.Join(s.root, slug)
	if _, err := os.Stat(filepath.Join(dir, scriptFile)); err != nil {
		return ErrNotFound
	}
	if err := os.WriteFile(filepath.Join(dir, renderFile), mp3, 0o644); err != nil {
		return fmt.Errorf("write render: %w", err)
	}
	data, err := json.MarshalIndent(timings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, timingsFile), data, 0o644); err != nil {
		return fmt.Errorf("write timings: %w", err)
	}
	return nil
}

// LoadRender reads rendered audio and timings; ErrNotFound when the
// episode was never rendered.
func (s *Store) LoadRender(slug string) ([]byte, []timeline.SegmentTiming, error) {
	dir := filepath.Join(s.root, slug)
	mp3, err := os.ReadFile(filepath.Join(dir, renderFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, timingsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read timings: %w", err)
	}
	var timings []timeline.SegmentTiming
	if err := json.Unmarshal(data, &timings); err != nil {
		return nil, nil, fmt.Errorf("parse timings: %w", err)
	}
	return mp3, timings, nil
}

// Delete removes an episode and everything in it.
func (s *Store) Delete(slug string) error {
	dir := filepath.Join(s.root, slug)
	if _, err := os.Stat(dir); err != nil {
		return ErrNotFound
	}
	return os.RemoveAll(dir)
}

// List returns every episode, newest first.
func (s *Store) List() ([]Episode, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}

	var eps []Episode
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ep, err := s.describe(entry.Name())
		if err != nil {
			// Stray directories aren't episodes; skip them.
			continue
		}
		eps = append(eps, ep)
	}
	sort.Slice(eps, func(i, j int) bool {
		return eps[i].Modified.After(eps[j].Modified)
	})
	return eps, nil
}

func (s *Store) describe(slug string) (Episode, error) {
	dir := filepath.Join(s.root, slug)
	info, err := os.Stat(filepath.Join(dir, scriptFile))
	if err != nil {
		return Episode{}, err
	}
	sc, err := script.Load(filepath.Join(dir, scriptFile))
	if err != nil {
		return Episode{}, err
	}

	ep := Episode{
		Slug:     slug,
		Title:    sc.Title,
		Path:     dir,
		Modified: info.ModTime(),
	}
	if ri, err := os.Stat(filepath.Join(dir, renderFile)); err == nil {
		ep.RenderSize = ri.Size()
		if ri.ModTime().After(ep.Modified) {
			ep.Modified = ri.ModTime()
		}
	}
	return ep, nil
}

// episodeSource adapts a slice of episodes for fuzzy matching over
// titles.
type episodeSource []Episode

func (s episodeSource) String(i int) string { return s[i].Title }
func (s episodeSource) Len() int            { return len(s) }

// Filter narrows episodes to those whose titles fuzzily match the
// query, best match first. An empty query returns the input unchanged.
func Filter(eps []Episode, query string) []Episode {
	if strings.TrimSpace(query) == "" {
		return eps
	}
	matches := fuzzy.FindFrom(query, episodeSource(eps))
	out := make([]Episode, 0, len(matches))
	for _, m := range matches {
		out = append(out, eps[m.Index])
	}
	return out
}
