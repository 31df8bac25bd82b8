// Package normalize rewrites authored dialogue into text a synthesis
// voice reads well: pronunciation hints applied, numerals spelled out,
// stage directions converted to punctuation or vocalizations, and
// comma clutter trimmed.
//
// Normalize is idempotent. Every rule either removes its own trigger
// (markers, digits) or strictly reduces what it matches (comma runs),
// so running the pipeline on its own output changes nothing. Callers
// rely on this: the same line may pass through the pipeline again
// after an edit without drifting.
package normalize

import "math/rand"

// Config tunes the pipeline. The zero value is a full run with the
// built-in hint table and deterministic expression choices.
type Config struct {
	// Hints maps mispronounced words to phonetic respellings. Merged
	// over DefaultHints; a hint mapping to "" disables the default.
	Hints map[string]string

	// Rand, when set, varies the vocalization chosen for expressive
	// markers. Nil keeps the canonical reading for every marker.
	Rand *rand.Rand

	// SkipHints leaves word spellings untouched. Numerals and markers
	// are still rewritten.
	SkipHints bool
}

// DefaultHints covers names and loanwords the stock voices trip over.
var DefaultHints = map[string]string{
	"Vani":   "Vaa-ni",
	"ghee":   "ghee",
	"crore":  "kuh-rore",
	"lakh":   "laakh",
	"paneer": "puh-neer",
}

// Normalize runs the full rewrite pipeline over one line of dialogue.
func Normalize(text string, cfg Config) string {
	if text == "" {
		return ""
	}

	if !cfg.SkipHints {
		text = applyHints(text, mergedHints(cfg.Hints))
	}
	text = expandNumerals(text)
	text = pausesToPunctuation(text)
	text = emotionsToExpressions(text, cfg.Rand)
	text = punctuationDiscipline(text)
	return cleanup(text)
}

func mergedHints(extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return DefaultHints
	}
	merged := make(map[string]string, len(DefaultHints)+len(extra))
	for k, v := range DefaultHints {
		merged[k] = v
	}
	for k, v := range extra {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}
