// Package markup recognizes inline authoring markup in dialogue text:
// parenthesized marker tags and punctuation cues that imply prosody.
// The catalog is a flat regex table iterated uniformly; per-type
// behavior lives with the consumers (render styling, rewrite rules).
package markup

import "regexp"

// Kind classifies a tokenized segment.
type Kind int

const (
	// Plain is inert text rendered as-is.
	Plain Kind = iota
	// Marker is an authoring tag not meant to be read aloud.
	Marker
	// Punctuation is a literal character sequence implying prosody.
	Punctuation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Marker:
		return "marker"
	case Punctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Segment types used across the catalog, the editor and the
// normalization pipeline.
const (
	TypePause      = "pause"
	TypeLaughter   = "laughter"
	TypeEmotion    = "emotion"
	TypeMicroPause = "micro_pause"
	TypeInterrupt  = "interrupt"
	TypeExpression = "expression"
)

// Entry is one recognized pattern in the catalog.
type Entry struct {
	// Pattern matches the marker or cue in raw line text.
	Pattern *regexp.Regexp

	// Kind is Marker or Punctuation; Plain never appears in the catalog.
	Kind Kind

	// Type groups entries for rendering and rewriting.
	Type string

	// Label is the human name shown in the editor.
	Label string

	// Literal is the canonical written form. Marker entries use it for
	// the "replace with alternative" action; punctuation entries for
	// display only.
	Literal string

	// Prosodic markers direct delivery only and are deleted rather
	// than replaced during normalization.
	Prosodic bool

	// Long distinguishes the long pause tag from the brief one.
	Long bool
}

func marker(pattern, typ, label, literal string) Entry {
	return Entry{
		Pattern: regexp.MustCompile(pattern),
		Kind:    Marker,
		Type:    typ,
		Label:   label,
		Literal: literal,
	}
}

func punct(pattern, typ, label, literal string) Entry {
	return Entry{
		Pattern: regexp.MustCompile(pattern),
		Kind:    Punctuation,
		Type:    typ,
		Label:   label,
		Literal: literal,
	}
}

// catalog holds every recognized marker and punctuation cue. Marker
// tags match case-insensitively; punctuation cues are literal and
// case-sensitive (an em-dash and a double hyphen are distinct entries).
//
// Order matters only as the deterministic tie-breaker for equal-length
// matches at the same offset.
var catalog = []Entry{
	// Pause markers.
	func() Entry {
		e := marker(`(?i)\(long pause\)`, TypePause, "long pause", "(long pause)")
		e.Long = true
		return e
	}(),
	marker(`(?i)\(pause\)`, TypePause, "brief pause", "(pause)"),

	// Laughter markers.
	marker(`(?i)\(laughs\)`, TypeLaughter, "laugh", "(laughs)"),
	marker(`(?i)\(giggles\)`, TypeLaughter, "giggle", "(giggles)"),
	marker(`(?i)\(chuckles\)`, TypeLaughter, "chuckle", "(chuckles)"),

	// Emotion markers.
	marker(`(?i)\(excited\)`, TypeEmotion, "excited", "(excited)"),
	marker(`(?i)\(surprised\)`, TypeEmotion, "surprised", "(surprised)"),
	marker(`(?i)\(thinking\)`, TypeEmotion, "thinking", "(thinking)"),
	marker(`(?i)\(sighs\)`, TypeEmotion, "sigh", "(sighs)"),

	// Prosody-only markers: recognized so the editor can show and
	// remove them, deleted outright by the normalizer.
	func() Entry {
		e := marker(`(?i)\(serious\)`, TypeEmotion, "serious", "(serious)")
		e.Prosodic = true
		return e
	}(),
	func() Entry {
		e := marker(`(?i)\(whispers\)`, TypeEmotion, "whisper", "(whispers)")
		e.Prosodic = true
		return e
	}(),
	func() Entry {
		e := marker(`(?i)\(lower voice\)`, TypeEmotion, "lower voice", "(lower voice)")
		e.Prosodic = true
		return e
	}(),

	// Punctuation cues.
	punct(`\.{3,}`, TypePause, "ellipsis", "..."),
	punct(`—`, TypeInterrupt, "em-dash", "—"),
	punct(`--`, TypeInterrupt, "double hyphen", "--"),
	punct(`\?!|!\?`, TypeExpression, "exclaimed question", "?!"),
	punct(`,`, TypeMicroPause, "comma", ","),
}

// Catalog returns the full marker and punctuation table.
func Catalog() []Entry {
	return catalog
}

// Alternatives returns the canonical literals of every non-prosodic
// marker of the given type, excluding the current literal. The editor
// offers these for the "replace marker" action.
func Alternatives(typ, current string) []string {
	var alts []string
	for _, e := range catalog {
		if e.Kind != Marker || e.Type != typ || e.Prosodic {
			continue
		}
		if e.Literal == current {
			continue
		}
		alts = append(alts, e.Literal)
	}
	return alts
}

// interrupt cues used to detect incomplete handoffs between lines.
var (
	trailingInterrupt = regexp.MustCompile(`(—|--)\s*$`)
	leadingInterrupt  = regexp.MustCompile(`^\s*(—|--)`)
)

// EndsWithInterrupt reports whether the line trails off into an
// interruption cue.
func EndsWithInterrupt(text string) bool {
	return trailingInterrupt.MatchString(text)
}

// StartsWithInterrupt reports whether the line barges in on the
// previous one.
func StartsWithInterrupt(text string) bool {
	return leadingInterrupt.MatchString(text)
}
